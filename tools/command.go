package tools

import (
	"context"

	"github.com/taskpilot/taskpilot/internal/util"
	"github.com/taskpilot/taskpilot/tool"
)

// CommandRunner executes a shell command string and returns its output.
// Extracted commands are never run in-process: hosts must opt in by supplying
// a runner, which is also where sandboxing and allow-listing belong.
type CommandRunner func(ctx context.Context, command string) (string, error)

// NewSystemCommand builds the shell command capability. Without a runner the
// tool rejects every invocation with NOT_CONFIGURED instead of silently
// executing untrusted text.
func NewSystemCommand(run CommandRunner) tool.Tool {
	return tool.NewFunctionTool("system_command", "Run a shell command on the host").
		WithAction("run", util.ObjectSchema(map[string]any{
			"command": util.StringProp("Shell command line to execute"),
		}, "command"), func(ctx context.Context, params map[string]any) (map[string]any, error) {
			command, _ := params["command"].(string)
			if run == nil {
				return nil, &tool.ToolError{
					Tool:    "system_command",
					Action:  "run",
					Message: "no command runner configured",
					Code:    tool.CodeNotConfigured,
				}
			}
			output, err := run(ctx, command)
			if err != nil {
				return nil, err
			}
			return map[string]any{"command": command, "output": output}, nil
		})
}
