// Package taskpilot provides a high-level façade over the planning and
// execution pipeline: natural-language command in, validated multi-step plan
// out, executed against a tool registry with per-session memory. Most
// applications interact with this package by:
//  1. Creating an Assistant via New() (optionally overriding the registry,
//     remote model and logger)
//  2. Feeding it user commands through Process()
//  3. Inspecting the returned Response (plan, extraction metadata, execution
//     result, rendered text)
//
// The façade delegates interpretation to planner.Planner and execution to
// engine.Engine while keeping setup ergonomics concise. All defaults are safe
// for local use: builtin tools sandboxed to the working directory, no remote
// model, no shell execution.
package taskpilot

import (
	"context"
	"fmt"
	"time"

	"github.com/taskpilot/taskpilot/engine"
	"github.com/taskpilot/taskpilot/extract"
	"github.com/taskpilot/taskpilot/logging"
	"github.com/taskpilot/taskpilot/model"
	"github.com/taskpilot/taskpilot/plan"
	"github.com/taskpilot/taskpilot/planner"
	"github.com/taskpilot/taskpilot/tool"
	"github.com/taskpilot/taskpilot/tools"
)

// Options configures the Assistant.
type Options struct {
	// Registry overrides the default registry. When nil a registry is
	// created and populated with the builtin tools.
	Registry *tool.Registry

	// BaseDir sandboxes the builtin file tool; defaults to the working
	// directory. Ignored when Registry is supplied.
	BaseDir string

	// AppDispatcher and CommandRunner wire host-side application control and
	// shell execution into the builtin tools. Ignored when Registry is
	// supplied.
	AppDispatcher tools.AppDispatcher
	CommandRunner tools.CommandRunner

	// Model enables the remote planning tier when non-nil.
	Model model.Model

	// RemoteTimeout bounds remote planning calls.
	RemoteTimeout time.Duration

	// FailFast makes execution abort a plan after its first failed step.
	FailFast bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Response is the outcome of processing one command.
type Response struct {
	// Text is a short rendering of the outcome, also recorded as the agent
	// side of the conversation turn.
	Text string
	// Plan is the interpreted multi-step plan that was executed.
	Plan *plan.MultiStepPlan
	// Metadata describes how the plan was obtained.
	Metadata plan.ExtractionMetadata
	// Result is the execution outcome, step by step.
	Result engine.Result
}

// Assistant binds a planner, an engine and their shared registry into a
// single conversational session. It is not safe for concurrent use; run one
// Assistant per session.
type Assistant struct {
	registry  *tool.Registry
	planner   *planner.Planner
	engine    *engine.Engine
	extractor *extract.Extractor
	logger    logging.Logger
}

// New creates an Assistant with optional overrides. Without a Registry the
// builtin tool set is registered automatically.
func New(optFns ...func(o *Options)) *Assistant {
	opts := Options{
		BaseDir:       ".",
		RemoteTimeout: planner.DefaultRemoteTimeout,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	registry := opts.Registry
	if registry == nil {
		registry = tool.NewRegistry(func(o *tool.RegistryOptions) {
			o.Logger = opts.Logger
		})
		tools.RegisterBuiltins(registry, func(o *tools.Options) {
			o.BaseDir = opts.BaseDir
			o.AppDispatcher = opts.AppDispatcher
			o.CommandRunner = opts.CommandRunner
		})
	}

	extractor := extract.New(func(o *extract.Options) {
		o.Logger = opts.Logger
	})

	pl := planner.New(registry, func(o *planner.Options) {
		o.Model = opts.Model
		o.Extractor = extractor
		o.RemoteTimeout = opts.RemoteTimeout
		o.Logger = opts.Logger
	})

	eng := engine.New(registry, func(o *engine.Options) {
		o.Logger = opts.Logger
		o.FailFast = opts.FailFast
	})

	return &Assistant{
		registry:  registry,
		planner:   pl,
		engine:    eng,
		extractor: extractor,
		logger:    opts.Logger,
	}
}

// Registry exposes the underlying registry so callers can add custom tools.
func (a *Assistant) Registry() *tool.Registry { return a.registry }

// Memory exposes the session memory backing this assistant.
func (a *Assistant) Memory() *plan.AgentMemory { return a.engine.Memory() }

// ExtractPlan parses a raw model response into a plan without executing it.
func (a *Assistant) ExtractPlan(raw string) (*plan.MultiStepPlan, plan.ExtractionMetadata, error) {
	return a.extractor.Extract(raw)
}

// Process interprets one user command, executes the resulting plan and
// records the exchange in session memory. It never returns a nil Plan: when
// no specific interpretation applies the command is echoed back.
func (a *Assistant) Process(ctx context.Context, command string) Response {
	req := planner.Request{
		Text:              command,
		PreviousUtterance: a.Memory().LastAgentUtterance(),
	}
	p, md := a.planner.Plan(ctx, req)

	a.logger.Info("assistant.plan.resolved",
		"source", md.Source,
		"confidence", md.Confidence,
		"steps", len(p.Steps),
	)

	res := a.engine.Execute(ctx, command, p)
	text := renderOutcome(p, res)
	a.Memory().AddTurn(command, text)

	return Response{Text: text, Plan: p, Metadata: md, Result: res}
}

// renderOutcome produces the one-line agent utterance recorded in memory.
func renderOutcome(p *plan.MultiStepPlan, res engine.Result) string {
	if res.Err != nil {
		return fmt.Sprintf("failed: %v", res.Err)
	}
	if text, ok := res.Output["text"].(string); ok && text != "" {
		return text
	}
	// Name the touched file in quotes so follow-up turns can resolve it.
	if name, ok := res.Output["filename"].(string); ok && name != "" {
		return fmt.Sprintf("done: %s %q", p.Description, name)
	}
	executed := 0
	for _, sr := range res.Steps {
		if sr.Status == plan.StatusExecuted {
			executed++
		}
	}
	if p.Description != "" {
		return fmt.Sprintf("done: %s (%d/%d steps)", p.Description, executed, len(res.Steps))
	}
	return fmt.Sprintf("done (%d/%d steps)", executed, len(res.Steps))
}
