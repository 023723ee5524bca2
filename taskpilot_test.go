package taskpilot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/model"
	"github.com/taskpilot/taskpilot/plan"
	"github.com/taskpilot/taskpilot/tool"
)

func newTestAssistant(t *testing.T, optFns ...func(o *Options)) *Assistant {
	t.Helper()
	opts := append([]func(o *Options){func(o *Options) { o.BaseDir = t.TempDir() }}, optFns...)
	return New(opts...)
}

func TestAssistant_CreateAndReadFile(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	resp := a.Process(ctx, `create file notes.txt with content "hello"`)
	require.NoError(t, resp.Result.Err)
	require.Len(t, resp.Plan.Steps, 1)
	assert.Equal(t, "file_operations", resp.Plan.Steps[0].Action)
	assert.Equal(t, "create_file", resp.Plan.Steps[0].Operation)
	assert.Equal(t, plan.SourceLocaleRule, resp.Metadata.Source)

	resp = a.Process(ctx, "read file notes.txt")
	require.NoError(t, resp.Result.Err)
	assert.Equal(t, "hello", resp.Result.Output["content"])
}

func TestAssistant_FollowUpUsesConversation(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	resp := a.Process(ctx, `create file draft.txt with content "wip"`)
	require.NoError(t, resp.Result.Err)
	assert.Contains(t, resp.Text, `"draft.txt"`)

	resp = a.Process(ctx, "read it")
	require.NoError(t, resp.Result.Err)
	require.Len(t, resp.Plan.Steps, 1)
	assert.Equal(t, "read_file", resp.Plan.Steps[0].Operation)
	assert.Equal(t, "draft.txt", resp.Plan.Steps[0].Params["filename"])
	assert.Equal(t, "wip", resp.Result.Output["content"])
}

func TestAssistant_AppControlDryRun(t *testing.T) {
	a := newTestAssistant(t)

	resp := a.Process(context.Background(), "open spotify")
	assert.Equal(t, plan.SourceAppControl, resp.Metadata.Source)
	require.Len(t, resp.Plan.Steps, 1)
	assert.Equal(t, "app_control", resp.Plan.Steps[0].Action)
	require.NoError(t, resp.Result.Err)
	assert.Equal(t, "spotify", resp.Result.Output["target"])
	assert.Equal(t, false, resp.Result.Output["dispatched"])
}

func TestAssistant_AppControlDispatcher(t *testing.T) {
	var gotOp, gotTarget string
	a := newTestAssistant(t, func(o *Options) {
		o.AppDispatcher = func(_ context.Context, operation, target string) (map[string]any, error) {
			gotOp, gotTarget = operation, target
			return map[string]any{"operation": operation, "target": target, "dispatched": true}, nil
		}
	})

	resp := a.Process(context.Background(), "close the terminal")
	require.NoError(t, resp.Result.Err)
	assert.Equal(t, "close", gotOp)
	assert.Equal(t, "terminal", gotTarget)
	assert.Equal(t, true, resp.Result.Output["dispatched"])
}

func TestAssistant_RecordsConversationAndSteps(t *testing.T) {
	a := newTestAssistant(t)
	ctx := context.Background()

	a.Process(ctx, "what time is it")
	a.Process(ctx, "hello out there")

	turns := a.Memory().Conversation()
	require.Len(t, turns, 2)
	assert.Equal(t, "what time is it", turns[0].User)
	assert.NotEmpty(t, turns[0].Agent)

	steps := a.Memory().Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "datetime", steps[0].Action)
	assert.Equal(t, "echo", steps[1].Action)
}

func TestAssistant_EchoRendersText(t *testing.T) {
	a := newTestAssistant(t)

	resp := a.Process(context.Background(), "good morning everyone")
	assert.Equal(t, plan.SourceEcho, resp.Metadata.Source)
	assert.Equal(t, "good morning everyone", resp.Text)
}

func TestAssistant_UnknownToolSurvives(t *testing.T) {
	a := newTestAssistant(t)

	// The keyword tier routes weather talk to a tool that is not built in;
	// execution records the failure instead of raising.
	resp := a.Process(context.Background(), "what is the weather like")
	require.Len(t, resp.Plan.Steps, 1)
	assert.Equal(t, "weather", resp.Plan.Steps[0].Action)
	assert.True(t, resp.Result.Failed())

	var nf *tool.NotFoundError
	require.ErrorAs(t, resp.Result.Err, &nf)
	assert.Contains(t, resp.Text, "failed")
}

func TestAssistant_RemotePlanning(t *testing.T) {
	mock := model.NewMockModel("test")
	mock.AddResponse("tidy up my scratch space somehow",
		`{"plan": [{"tool": "file_operations", "action": "list_dir", "parameters": {"path": "."}}]}`)

	a := newTestAssistant(t, func(o *Options) { o.Model = mock })

	resp := a.Process(context.Background(), "tidy up my scratch space somehow")
	assert.Equal(t, plan.SourceRemote, resp.Metadata.Source)
	require.NoError(t, resp.Result.Err)
	assert.Equal(t, 0, resp.Result.Output["count"])
}

func TestAssistant_ExtractPlan(t *testing.T) {
	a := newTestAssistant(t)

	p, md, err := a.ExtractPlan(`{"command": "uptime"}`)
	require.NoError(t, err)
	assert.Equal(t, "system_command", p.Steps[0].Action)
	assert.Equal(t, plan.SourceCommandField, md.Source)

	_, md, err = a.ExtractPlan("I'm sorry, I can't do that.")
	assert.Error(t, err)
	assert.True(t, md.IsError)
}

func TestAssistant_CustomRegistry(t *testing.T) {
	reg := tool.NewRegistry()
	reg.Register(tool.NewFunctionTool("echo", "repeats").
		WithAction("say", nil, func(_ context.Context, params map[string]any) (map[string]any, error) {
			return map[string]any{"text": "custom: " + params["text"].(string)}, nil
		}))

	a := New(func(o *Options) { o.Registry = reg })

	resp := a.Process(context.Background(), "completely unroutable chatter")
	assert.Equal(t, "custom: completely unroutable chatter", resp.Text)
	assert.Equal(t, []string{"echo"}, a.Registry().Names())
}
