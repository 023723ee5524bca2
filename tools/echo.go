package tools

import (
	"context"

	"github.com/taskpilot/taskpilot/internal/util"
	"github.com/taskpilot/taskpilot/tool"
)

// NewEcho builds the fallback capability that repeats text back to the user.
// The planner routes to it when no other interpretation applies, so every
// utterance still produces an executable plan.
func NewEcho() tool.Tool {
	return tool.NewFunctionTool("echo", "Repeat text back to the user").
		WithAction("say", util.ObjectSchema(map[string]any{
			"text": util.StringProp("Text to repeat"),
		}, "text"), func(_ context.Context, params map[string]any) (map[string]any, error) {
			text, _ := params["text"].(string)
			return map[string]any{"text": text}, nil
		})
}
