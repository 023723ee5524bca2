// Package logging provides a tiny abstraction over slog so the rest of the
// module can depend on a minimal interface (Logger) while callers plug any
// structured logger. It also offers a contextual PipelineLogger with domain
// helpers for tool calls, planner tiers and extraction strategies.
package logging
