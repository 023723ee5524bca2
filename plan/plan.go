package plan

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/uuid"
)

// PlanStep describes a single tool invocation within a plan.
//
// Action names a tool registered in the registry; Operation selects the
// concrete operation within that tool (tools exposing a single operation may
// leave it equal to Action). Params carries the argument mapping handed to
// the tool unchanged.
type PlanStep struct {
	ID            string         `json:"id"`
	Action        string         `json:"action"`
	Operation     string         `json:"operation,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
	Description   string         `json:"description,omitempty"`
	RequiredTools []string       `json:"required_tools,omitempty"`
	Expected      string         `json:"expected,omitempty"`
	Condition     *StepCondition `json:"condition,omitempty"`
}

// NewStep constructs a step with a fresh ID. Operation defaults to action.
func NewStep(action, operation string, params map[string]any) PlanStep {
	if operation == "" {
		operation = action
	}
	if params == nil {
		params = map[string]any{}
	}
	return PlanStep{
		ID:        uuid.NewString(),
		Action:    action,
		Operation: operation,
		Params:    params,
	}
}

// StepCondition is a precondition evaluated against the accumulated memory
// context before a step executes. When Equals is nil the condition holds if
// the key is present and truthy; otherwise the stored value must deep-equal
// Equals.
type StepCondition struct {
	Key    string `json:"key"`
	Equals any    `json:"equals,omitempty"`
}

// Evaluate reports whether the condition holds for the given context snapshot.
func (c *StepCondition) Evaluate(ctx map[string]any) bool {
	if c == nil {
		return true
	}
	v, ok := ctx[c.Key]
	if !ok {
		return false
	}
	if c.Equals == nil {
		return truthy(v)
	}
	return reflect.DeepEqual(v, c.Equals)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

// MultiStepPlan is an ordered sequence of steps plus plan-level metadata.
// A valid plan is never empty; "no plan" is always an explicit error from the
// producer, never an empty-steps success.
type MultiStepPlan struct {
	ID            string     `json:"id"`
	Steps         []PlanStep `json:"steps"`
	Description   string     `json:"description,omitempty"`
	RequiredTools []string   `json:"required_tools,omitempty"`
	Expected      string     `json:"expected,omitempty"`
}

// NewPlan constructs a plan from steps, deriving the aggregate required-tools
// set from the step actions.
func NewPlan(description string, steps ...PlanStep) *MultiStepPlan {
	p := &MultiStepPlan{
		ID:          uuid.NewString(),
		Steps:       steps,
		Description: description,
	}
	p.RequiredTools = p.toolSet()
	return p
}

// Validate checks the structural invariants of a produced plan.
func (p *MultiStepPlan) Validate() error {
	if p == nil || len(p.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	for i, s := range p.Steps {
		if s.Action == "" {
			return fmt.Errorf("step %d has no action", i)
		}
	}
	return nil
}

func (p *MultiStepPlan) toolSet() []string {
	seen := map[string]bool{}
	for _, s := range p.Steps {
		seen[s.Action] = true
		for _, t := range s.RequiredTools {
			seen[t] = true
		}
	}
	tools := make([]string, 0, len(seen))
	for t := range seen {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}
