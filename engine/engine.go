// Package engine executes a MultiStepPlan against a tool registry while
// tracking AgentMemory. Steps run strictly sequentially because later steps
// may read context written by earlier ones through condition predicates.
// Failures are local: a failed or unresolved step is recorded and the engine
// continues with the remaining steps, favoring partial progress over atomic
// rollback (fail-fast is available as a layered option).
package engine

import (
	"context"
	"time"

	"github.com/taskpilot/taskpilot/logging"
	"github.com/taskpilot/taskpilot/plan"
	"github.com/taskpilot/taskpilot/tool"
)

// StepResult captures the outcome of one attempted step.
type StepResult struct {
	Index     int            `json:"index"`
	Action    string         `json:"action"`
	Operation string         `json:"operation,omitempty"`
	Status    plan.StepStatus `json:"status"`
	Output    map[string]any `json:"output,omitempty"`
	Err       error          `json:"-"`
}

// Result aggregates a plan execution. The plan's overall Output and Err are
// the last attempted step's outcome, not an aggregate. Err is nil when the
// last step executed successfully or was skipped.
type Result struct {
	PlanID string         `json:"plan_id"`
	Steps  []StepResult   `json:"steps"`
	Output map[string]any `json:"output,omitempty"`
	Err    error          `json:"-"`
}

// Failed reports whether the plan's final outcome is an error.
func (r Result) Failed() bool { return r.Err != nil }

// Callbacks observe step execution without changing engine semantics.
type Callbacks struct {
	BeforeStep func(index int, step plan.PlanStep)
	AfterStep  func(index int, step plan.PlanStep, res StepResult)
}

// Options configures Engine construction.
type Options struct {
	// Memory overrides the engine-owned memory; one is created when nil.
	Memory *plan.AgentMemory
	// Logger receives structured step events.
	Logger logging.Logger
	// FailFast aborts remaining steps after the first failure. Off by
	// default: the documented behavior is continue-on-step-failure.
	FailFast bool
	// Callbacks are optional step observers.
	Callbacks Callbacks
}

// WithFailFast enables the optional all-or-nothing mode.
func WithFailFast() func(o *Options) {
	return func(o *Options) { o.FailFast = true }
}

// Engine walks plans against an injected registry. One engine instance owns
// one AgentMemory for its session lifetime; independent sessions run
// independent engines sharing only the read-mostly registry.
type Engine struct {
	registry  *tool.Registry
	memory    *plan.AgentMemory
	logger    logging.Logger
	failFast  bool
	callbacks Callbacks
}

// New constructs an Engine over the given registry.
func New(registry *tool.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Memory == nil {
		opts.Memory = plan.NewAgentMemory()
	}
	return &Engine{
		registry:  registry,
		memory:    opts.Memory,
		logger:    opts.Logger,
		failFast:  opts.FailFast,
		callbacks: opts.Callbacks,
	}
}

// Memory returns the engine-owned memory.
func (e *Engine) Memory() *plan.AgentMemory { return e.memory }

// Execute walks the plan in step order. Memory is updated exactly once per
// attempted step, including skipped and failed ones. Execute never raises on
// plan content; all failures surface inside the returned Result.
func (e *Engine) Execute(ctx context.Context, command string, p *plan.MultiStepPlan) Result {
	res := Result{}
	if p != nil {
		res.PlanID = p.ID
	}
	if err := p.Validate(); err != nil {
		res.Err = err
		return res
	}

	for i, step := range p.Steps {
		if e.callbacks.BeforeStep != nil {
			e.callbacks.BeforeStep(i, step)
		}

		sr := e.executeStep(ctx, command, i, step)
		res.Steps = append(res.Steps, sr)
		res.Output = sr.Output
		res.Err = sr.Err

		if e.callbacks.AfterStep != nil {
			e.callbacks.AfterStep(i, step, sr)
		}
		if sr.Err != nil && e.failFast {
			e.logger.Warn("engine.plan.aborted", "step", i, "error", sr.Err.Error())
			break
		}
	}
	return res
}

func (e *Engine) executeStep(ctx context.Context, command string, index int, step plan.PlanStep) StepResult {
	sr := StepResult{Index: index, Action: step.Action, Operation: step.Operation}
	// Record a copy so tools that mutate their params map cannot rewrite
	// history.
	params := make(map[string]any, len(step.Params))
	for k, v := range step.Params {
		params[k] = v
	}
	rec := plan.StepRecord{
		Command:   command,
		Action:    step.Action,
		Operation: step.Operation,
		Params:    params,
	}

	if step.Condition != nil && !step.Condition.Evaluate(e.memory.ContextSnapshot()) {
		sr.Status = plan.StatusSkipped
		rec.Status = plan.StatusSkipped
		e.memory.RecordStep(rec)
		e.logger.Debug("engine.step.skipped", "step", index, "action", step.Action, "condition_key", step.Condition.Key)
		return sr
	}

	t, ok := e.registry.Get(step.Action)
	if !ok {
		sr.Status = plan.StatusFailed
		sr.Err = &tool.NotFoundError{Name: step.Action}
		rec.Status = plan.StatusFailed
		rec.Error = sr.Err.Error()
		e.memory.RecordStep(rec)
		e.logger.Warn("engine.step.tool_missing", "step", index, "action", step.Action)
		return sr
	}

	operation := step.Operation
	if operation == "" {
		operation = step.Action
	}
	start := time.Now()
	output, err := t.Invoke(ctx, operation, step.Params)
	if err != nil {
		sr.Status = plan.StatusFailed
		sr.Err = err
		rec.Status = plan.StatusFailed
		rec.Error = err.Error()
		e.memory.RecordStep(rec)
		e.logger.Warn("engine.step.failed", "step", index, "action", step.Action, "operation", operation,
			"duration", time.Since(start), "error", err.Error())
		return sr
	}

	sr.Status = plan.StatusExecuted
	sr.Output = output
	rec.Status = plan.StatusExecuted
	rec.Output = output
	e.memory.RecordStep(rec)
	e.applyContext(step, output)
	e.logger.Info("engine.step.executed", "step", index, "action", step.Action, "operation", operation,
		"duration", time.Since(start))
	return sr
}

// applyContext mutates the memory context after a successful step: a
// tool-returned "context" map merges key-by-key, and the engine records the
// last action and output for condition predicates of later steps.
func (e *Engine) applyContext(step plan.PlanStep, output map[string]any) {
	if delta, ok := output["context"].(map[string]any); ok {
		e.memory.MergeContext(delta)
	}
	e.memory.MergeContext(map[string]any{
		"last_action":    step.Action,
		"last_operation": step.Operation,
		"last_output":    output,
	})
}
