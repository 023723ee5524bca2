package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger defines the minimal logging interface used throughout taskpilot.
// Users can provide their own implementation or use the slog adapters below.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NoOpLogger discards all log messages. Useful for tests or when logging is
// disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}

// PipelineConfig configures construction of a PipelineLogger.
type PipelineConfig struct {
	Level     slog.Level
	Format    string // "json" or "text"
	Output    io.Writer
	Component string
	SessionID string
}

// DefaultPipelineConfig returns a baseline JSON info-level configuration.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{Level: slog.LevelInfo, Format: "json", Output: os.Stdout}
}

// PipelineLogger wraps slog adding component/session context and domain
// helpers for the extraction/planning/execution pipeline. It is cheap to
// copy via the With* methods.
type PipelineLogger struct {
	logger    *slog.Logger
	component string
	sessionID string
}

// NewPipelineLogger builds a PipelineLogger from a config (or defaults if nil).
func NewPipelineLogger(cfg *PipelineConfig) *PipelineLogger {
	if cfg == nil {
		cfg = DefaultPipelineConfig()
	}
	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(cfg.Output, opts)
	} else {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}
	return &PipelineLogger{logger: slog.New(handler), component: cfg.Component, sessionID: cfg.SessionID}
}

// WithComponent returns a copy scoped to the given logical component
// (extractor, planner, engine, registry).
func (l *PipelineLogger) WithComponent(c string) *PipelineLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithSession returns a copy carrying a session identifier.
func (l *PipelineLogger) WithSession(sid string) *PipelineLogger {
	nl := *l
	nl.sessionID = sid
	return &nl
}

func (l *PipelineLogger) attrs(extra ...slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(extra)+2)
	if l.component != "" {
		out = append(out, slog.String("component", l.component))
	}
	if l.sessionID != "" {
		out = append(out, slog.String("session_id", l.sessionID))
	}
	return append(out, extra...)
}

func (l *PipelineLogger) log(level slog.Level, msg string, extra ...slog.Attr) {
	l.logger.LogAttrs(context.Background(), level, msg, l.attrs(extra...)...)
}

// Debug logs at debug level.
func (l *PipelineLogger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, l.withCtx(args)...)
}

// Info logs at info level.
func (l *PipelineLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.withCtx(args)...)
}

// Warn logs at warn level.
func (l *PipelineLogger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, l.withCtx(args)...)
}

// Error logs at error level.
func (l *PipelineLogger) Error(msg string, args ...any) {
	l.logger.Error(msg, l.withCtx(args)...)
}

func (l *PipelineLogger) withCtx(args []any) []any {
	if l.component != "" {
		args = append(args, "component", l.component)
	}
	if l.sessionID != "" {
		args = append(args, "session_id", l.sessionID)
	}
	return args
}

// LogToolCall records execution details for a tool invocation.
func (l *PipelineLogger) LogToolCall(tool, action string, dur time.Duration, err error) {
	extra := []slog.Attr{
		slog.String("tool", tool),
		slog.String("action", action),
		slog.Duration("duration", dur),
		slog.Bool("success", err == nil),
	}
	if err != nil {
		extra = append(extra, slog.String("error", err.Error()))
		l.log(slog.LevelError, "tool.call.failed", extra...)
		return
	}
	l.log(slog.LevelInfo, "tool.call.completed", extra...)
}

// LogPlannerTier records which planner tier produced (or declined) a plan.
func (l *PipelineLogger) LogPlannerTier(tier string, matched bool) {
	l.log(slog.LevelDebug, "planner.tier.evaluated",
		slog.String("tier", tier), slog.Bool("matched", matched))
}

// LogExtraction records the outcome of one extraction strategy attempt.
func (l *PipelineLogger) LogExtraction(strategy string, hit bool, steps int) {
	l.log(slog.LevelDebug, "extract.strategy.evaluated",
		slog.String("strategy", strategy), slog.Bool("hit", hit), slog.Int("steps", steps))
}
