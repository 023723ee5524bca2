package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskpilot/taskpilot/plan"
)

func TestExtract_CommandField(t *testing.T) {
	raw := `Sure, here you go:
{"command": "uptime"}`

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "system_command", p.Steps[0].Action)
	assert.Equal(t, "run", p.Steps[0].Operation)
	assert.Equal(t, "uptime", p.Steps[0].Params["command"])
	assert.Equal(t, plan.SourceCommandField, md.Source)
	assert.False(t, md.IsError)
}

func TestExtract_FencedJSONBlock(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"plan\": [{\"tool\": \"file_operations\", \"action\": \"create_file\", \"parameters\": {\"filename\": \"a.txt\"}}, {\"tool\": \"file_operations\", \"action\": \"read_file\", \"parameters\": {\"filename\": \"a.txt\"}}]}\n```\nLet me know how it goes."

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, plan.SourcePlanArray, md.Source)
	assert.Equal(t, "create_file", p.Steps[0].Operation)
	assert.Equal(t, "read_file", p.Steps[1].Operation)
	assert.Equal(t, "a.txt", p.Steps[0].Params["filename"])
}

func TestExtract_PlanArrayPreservesOrderAndCount(t *testing.T) {
	raw := `{"plan": [
		{"tool": "file_operations", "action": "create_file", "parameters": {"filename": "1.txt"}},
		{"tool": "clipboard", "action": "copy", "parameters": {"text": "x"}},
		{"tool": "file_operations", "action": "delete_file", "parameters": {"filename": "1.txt"}}
	]}`

	p, _, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, "create_file", p.Steps[0].Operation)
	assert.Equal(t, "copy", p.Steps[1].Operation)
	assert.Equal(t, "delete_file", p.Steps[2].Operation)
}

func TestExtract_OperationFieldNamesTool(t *testing.T) {
	// Wire format used by some planners: "operation" is the tool name.
	raw := `{"plan": [{"operation": "system_info", "action": "uptime", "parameters": {}}]}`

	p, _, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "system_info", p.Steps[0].Action)
	assert.Equal(t, "uptime", p.Steps[0].Operation)
}

func TestExtract_OperationCommandDefaultsToRun(t *testing.T) {
	// Without an explicit action, a command-shaped entry is a shell run.
	raw := `{"plan": [{"operation": "system_command", "parameters": {"command": "uptime"}, "confidence": 0.95}]}`

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "system_command", p.Steps[0].Action)
	assert.Equal(t, "run", p.Steps[0].Operation)
	assert.Equal(t, "uptime", p.Steps[0].Params["command"])
	assert.Equal(t, 0.95, md.Confidence)
}

func TestExtract_BalancedObjectWithoutFence(t *testing.T) {
	raw := `Here's what I'd run: {"command": "df -h"} — hope that helps!`

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "df -h", p.Steps[0].Params["command"])
	assert.Equal(t, plan.SourceCommandField, md.Source)
}

func TestExtract_NestedQuotesPreserved(t *testing.T) {
	raw := `{"command": "echo \"hello world\""}`

	p, _, err := New().Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, `echo "hello world"`, p.Steps[0].Params["command"])
}

func TestExtract_CommandsArray(t *testing.T) {
	raw := `{"commands": ["mkdir demo", "ls demo"]}`

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, "mkdir demo", p.Steps[0].Params["command"])
	assert.Equal(t, "ls demo", p.Steps[1].Params["command"])
	assert.Equal(t, plan.SourceCommandList, md.Source)
}

func TestExtract_ParsedButUnrecognizedShapeIsTerminal(t *testing.T) {
	// A payload that parses fine but has no usable field must not fall
	// through to free-text guessing.
	raw := "{\"foo\": \"bar\"}\nUse the command `ls` to list files."

	p, md, err := New().Extract(raw)
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Nil(t, p)
	assert.True(t, md.IsError)
}

func TestExtract_IndicatorPhrase(t *testing.T) {
	raw := "Use the command `ls -la` to list files."

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "system_command", p.Steps[0].Action)
	assert.Equal(t, "ls -la", p.Steps[0].Params["command"])
	assert.Equal(t, plan.SourcePhrase, md.Source)
}

func TestExtract_IndicatorPhraseUnquoted(t *testing.T) {
	raw := "You should try running uptime -p. That prints the uptime."

	p, _, err := New().Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, "uptime -p", p.Steps[0].Params["command"])
}

func TestExtract_CodeBlockFallback(t *testing.T) {
	raw := "To check disk usage:\n```bash\n$ du -sh .\n```"

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, "du -sh .", p.Steps[0].Params["command"])
	assert.Equal(t, plan.SourceCodeBlock, md.Source)
}

func TestExtract_CyrillicVerbMatch(t *testing.T) {
	raw := "создай файл заметки.txt с текстом привет"

	p, md, err := New().Extract(raw)
	require.NoError(t, err)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "file_operations", p.Steps[0].Action)
	assert.Equal(t, "create_file", p.Steps[0].Operation)
	assert.Equal(t, "заметки.txt", p.Steps[0].Params["filename"])
	assert.Equal(t, "привет", p.Steps[0].Params["content"])
	assert.Equal(t, plan.SourceVerbMatch, md.Source)
}

func TestExtract_CyrillicListBeforeRead(t *testing.T) {
	raw := "покажи файлы в папке"

	p, _, err := New().Extract(raw)
	require.NoError(t, err)
	assert.Equal(t, "list_dir", p.Steps[0].Operation)
	assert.Equal(t, ".", p.Steps[0].Params["path"])
}

func TestExtract_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\n"} {
		p, md, err := New().Extract(raw)
		var se *StructuralError
		require.ErrorAs(t, err, &se)
		assert.Nil(t, p)
		assert.True(t, md.IsError)
	}
}

func TestExtract_RefusalNeverSynthesizes(t *testing.T) {
	raws := []string{
		"I'm sorry, I can't help with that request.",
		"I cannot assist with deleting system files. Use the command `rm -rf /` at your own risk.",
		"Я не могу выполнить это действие.",
		"Lo siento, no puedo hacer eso.",
	}
	for _, raw := range raws {
		p, md, err := New().Extract(raw)
		var re *RefusalError
		require.ErrorAs(t, err, &re, "input: %s", raw)
		assert.Nil(t, p)
		assert.True(t, md.IsError)
		assert.NotEmpty(t, md.Message)
	}
}

func TestExtract_NoCommandFound(t *testing.T) {
	p, md, err := New().Extract("The weather in Berlin is usually mild in May.")
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "no command found")
	assert.True(t, md.IsError)
	assert.Equal(t, se.Reason, md.Message)
}

func TestExtract_Deterministic(t *testing.T) {
	raw := `{"plan": [{"tool": "clipboard", "action": "copy", "parameters": {"text": "same"}}]}`
	e := New()

	p1, md1, err1 := e.Extract(raw)
	p2, md2, err2 := e.Extract(raw)
	require.NoError(t, err1)
	require.NoError(t, err2)

	require.Equal(t, len(p1.Steps), len(p2.Steps))
	for i := range p1.Steps {
		assert.Equal(t, p1.Steps[i].Action, p2.Steps[i].Action)
		assert.Equal(t, p1.Steps[i].Operation, p2.Steps[i].Operation)
		assert.Equal(t, p1.Steps[i].Params, p2.Steps[i].Params)
	}
	assert.Equal(t, md1.Source, md2.Source)
	assert.Equal(t, md1.Confidence, md2.Confidence)
}

func TestExtract_PayloadConfidence(t *testing.T) {
	raw := `{"plan": [{"tool": "echo", "action": "say", "parameters": {"text": "hi"}, "confidence": 0.7}]}`

	_, md, err := New().Extract(raw)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, md.Confidence, 1e-9)

	_, md, err = New().Extract(`{"command": "uptime"}`)
	require.NoError(t, err)
	assert.InDelta(t, structuredConfidence, md.Confidence, 1e-9)
}

func TestExtract_CustomRefusalPhrases(t *testing.T) {
	e := New(func(o *Options) { o.RefusalPhrases = []string{"denied"} })

	_, _, err := e.Extract("Request denied by policy.")
	var re *RefusalError
	require.ErrorAs(t, err, &re)

	// Default phrases no longer apply once overridden.
	p, _, err := e.Extract("I'm sorry. {\"command\": \"uptime\"}")
	require.NoError(t, err)
	assert.Equal(t, "uptime", p.Steps[0].Params["command"])
}

func TestBalancedObjects(t *testing.T) {
	objs := balancedObjects(`prefix {"a": {"b": "}"}} suffix {"c": 1}`)
	require.Len(t, objs, 2)
	assert.Equal(t, `{"a": {"b": "}"}}`, objs[0])
	assert.Equal(t, `{"c": 1}`, objs[1])
}

func TestFencedBlocks(t *testing.T) {
	text := "```json\n{\"a\":1}\n```\n```bash\nls\n```"
	assert.Equal(t, []string{"{\"a\":1}"}, fencedBlocks(text, "json"))
	assert.Len(t, fencedBlocks(text, ""), 2)
}
