package tools

import (
	"context"
	"sync"

	"github.com/taskpilot/taskpilot/internal/util"
	"github.com/taskpilot/taskpilot/tool"
)

// clipboard is an in-process text buffer. Desktop integrations can replace it
// by registering their own tool under the same name.
type clipboard struct {
	mu      sync.Mutex
	content string
	set     bool
}

// NewClipboard builds the copy/paste capability backed by an in-process
// buffer.
func NewClipboard() tool.Tool {
	c := &clipboard{}
	return tool.NewFunctionTool("clipboard", "Copy text to and paste text from the clipboard").
		WithAction("copy", util.ObjectSchema(map[string]any{
			"text": util.StringProp("Text to place on the clipboard"),
		}, "text"), c.copy).
		WithAction("paste", nil, c.paste).
		WithAction("clear", nil, c.clear)
}

func (c *clipboard) copy(_ context.Context, params map[string]any) (map[string]any, error) {
	text, _ := params["text"].(string)
	c.mu.Lock()
	c.content = text
	c.set = true
	c.mu.Unlock()
	return map[string]any{"copied": true, "length": len(text)}, nil
}

func (c *clipboard) paste(_ context.Context, _ map[string]any) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return map[string]any{"text": c.content, "empty": !c.set}, nil
}

func (c *clipboard) clear(_ context.Context, _ map[string]any) (map[string]any, error) {
	c.mu.Lock()
	c.content = ""
	c.set = false
	c.mu.Unlock()
	return map[string]any{"cleared": true}, nil
}
