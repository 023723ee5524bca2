package tool

import (
	"context"
	"fmt"
	"sort"

	"github.com/taskpilot/taskpilot/internal/util"
)

// Handler is the function signature wrapped by FunctionTool actions.
type Handler func(ctx context.Context, params map[string]any) (map[string]any, error)

type actionSpec struct {
	schema  map[string]any
	handler Handler
}

// FunctionTool is a generic adapter that exposes plain Go functions as a
// multi-action tool. Each action carries a minimal JSON-Schema-like parameter
// specification validated before its handler runs.
//
// Error semantics:
//
//	*ToolError (returned by a handler) -> forwarded unchanged
//	unknown action                     -> *ToolError{Code: UNKNOWN_ACTION}
//	validation failure                 -> *ToolError{Code: VALIDATION_ERROR}
//	other handler error                -> *ToolError{Code: EXECUTION_ERROR}
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use.
type FunctionTool struct {
	name        string
	description string
	actions     map[string]actionSpec
}

// NewFunctionTool constructs an empty FunctionTool; add actions with
// WithAction before registering it.
func NewFunctionTool(name, description string) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		actions:     map[string]actionSpec{},
	}
}

// WithAction adds (or replaces) one named action. A nil schema skips
// validation. Returns the tool for chaining.
func (t *FunctionTool) WithAction(action string, schema map[string]any, fn Handler) *FunctionTool {
	t.actions[action] = actionSpec{schema: schema, handler: fn}
	return t
}

// Name returns the registry key for this tool.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the human-readable summary.
func (t *FunctionTool) Description() string { return t.description }

// Actions returns the supported operation names in sorted order.
func (t *FunctionTool) Actions() []string {
	out := make([]string, 0, len(t.actions))
	for a := range t.actions {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Invoke validates params against the action's schema then runs its handler,
// wrapping failures as *ToolError for uniform downstream handling.
func (t *FunctionTool) Invoke(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	spec, ok := t.actions[action]
	if !ok {
		return nil, &ToolError{
			Tool:    t.name,
			Action:  action,
			Message: fmt.Sprintf("unsupported action %q", action),
			Code:    CodeUnknownAction,
		}
	}
	if params == nil {
		params = map[string]any{}
	}
	if spec.schema != nil {
		if err := util.ValidateParameters(params, spec.schema); err != nil {
			return nil, &ToolError{
				Tool:    t.name,
				Action:  action,
				Message: fmt.Sprintf("parameter validation failed: %v", err),
				Code:    CodeValidation,
				Details: err,
			}
		}
	}
	result, err := spec.handler(ctx, params)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok {
			return nil, toolErr
		}
		return nil, &ToolError{
			Tool:    t.name,
			Action:  action,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}
	return result, nil
}
