package tools

import (
	"context"

	"github.com/taskpilot/taskpilot/internal/util"
	"github.com/taskpilot/taskpilot/tool"
)

// AppDispatcher performs an application lifecycle operation on the host
// desktop. Implementations are platform specific; the default dispatcher
// returns the resolved intent without touching the window system.
type AppDispatcher func(ctx context.Context, operation, target string) (map[string]any, error)

var appOperations = []string{"open", "close", "focus", "minimize", "maximize"}

// NewAppControl builds the application lifecycle capability. A nil dispatcher
// yields a dry-run tool that reports the operation it would perform.
func NewAppControl(dispatch AppDispatcher) tool.Tool {
	if dispatch == nil {
		dispatch = func(_ context.Context, operation, target string) (map[string]any, error) {
			return map[string]any{"operation": operation, "target": target, "dispatched": false}, nil
		}
	}
	t := tool.NewFunctionTool("app_control", "Open, close, focus, minimize or maximize applications")
	schema := util.ObjectSchema(map[string]any{
		"target": util.StringProp("Application name"),
	}, "target")
	for _, op := range appOperations {
		op := op
		t.WithAction(op, schema, func(ctx context.Context, params map[string]any) (map[string]any, error) {
			target, _ := params["target"].(string)
			return dispatch(ctx, op, target)
		})
	}
	return t
}
