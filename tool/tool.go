// Package tool implements the capability subsystem: the Tool interface every
// capability exposes, a name-keyed Registry decoupling the execution engine
// from concrete implementations, and a FunctionTool adapter that turns plain
// Go functions into schema-validated tools.
package tool

import (
	"context"
	"fmt"

	"github.com/taskpilot/taskpilot/internal/util"
)

// Tool is the single calling convention every capability exposes. The engine
// resolves a tool by name and invokes one of its actions with a parameter
// mapping; the result's internal shape is tool-defined and opaque beyond
// success/failure.
//
// Implementations should:
//   - provide clear, descriptive names (snake_case recommended)
//   - return *ToolError for expected failures so callers get stable codes
//   - be safe for concurrent use; the registry is shared across sessions
type Tool interface {
	// Name returns the unique registry key for this tool.
	Name() string

	// Description returns a human-readable summary shown to planners and
	// remote models.
	Description() string

	// Actions returns the operation names this tool supports.
	Actions() []string

	// Invoke executes one action with the given parameter mapping.
	Invoke(ctx context.Context, action string, params map[string]any) (map[string]any, error)
}

// ValidationError re-exports the shared parameter validation error type.
type ValidationError = util.ValidationError

// Error codes used by ToolError.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeExecution     = "EXECUTION_ERROR"
	CodeUnknownAction = "UNKNOWN_ACTION"
	CodeNotConfigured = "NOT_CONFIGURED"
)

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// NotFoundError is returned when a plan step names an unregistered tool.
type NotFoundError struct {
	Name string `json:"name"`
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}
