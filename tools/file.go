package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/taskpilot/taskpilot/internal/util"
	"github.com/taskpilot/taskpilot/tool"
)

const fileToolName = "file_operations"

var filenameSchema = util.ObjectSchema(map[string]any{
	"filename": util.StringProp("Path of the target file, relative to the sandbox"),
}, "filename")

var createSchema = util.ObjectSchema(map[string]any{
	"filename": util.StringProp("Path of the file to create"),
	"content":  util.StringProp("Initial file content"),
}, "filename")

var listSchema = util.ObjectSchema(map[string]any{
	"path": util.StringProp("Directory to list, relative to the sandbox"),
})

// NewFileOperations builds the file capability sandboxed under baseDir.
// Paths escaping the sandbox are rejected with a VALIDATION_ERROR.
func NewFileOperations(baseDir string) tool.Tool {
	if baseDir == "" {
		baseDir = "."
	}
	f := &fileOps{base: baseDir}
	return tool.NewFunctionTool(fileToolName, "Create, read, append, delete and list files in a sandboxed directory").
		WithAction("create_file", createSchema, f.create).
		WithAction("read_file", filenameSchema, f.read).
		WithAction("append_file", createSchema, f.append).
		WithAction("delete_file", filenameSchema, f.delete).
		WithAction("list_dir", listSchema, f.list)
}

type fileOps struct {
	base string
}

// resolve joins a relative path onto the sandbox root, rejecting escapes.
func (f *fileOps) resolve(name string) (string, error) {
	if name == "" {
		return "", &tool.ToolError{Tool: fileToolName, Message: "empty filename", Code: tool.CodeValidation}
	}
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", &tool.ToolError{
			Tool:    fileToolName,
			Message: fmt.Sprintf("path %q escapes the sandbox", name),
			Code:    tool.CodeValidation,
		}
	}
	return filepath.Join(f.base, cleaned), nil
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func (f *fileOps) create(_ context.Context, params map[string]any) (map[string]any, error) {
	path, err := f.resolve(stringParam(params, "filename"))
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	content := stringParam(params, "content")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, err
	}
	return map[string]any{
		"filename": stringParam(params, "filename"),
		"bytes":    len(content),
		"context":  map[string]any{"last_file": stringParam(params, "filename")},
	}, nil
}

func (f *fileOps) read(_ context.Context, params map[string]any) (map[string]any, error) {
	path, err := f.resolve(stringParam(params, "filename"))
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"filename": stringParam(params, "filename"),
		"content":  string(data),
		"context":  map[string]any{"last_file": stringParam(params, "filename")},
	}, nil
}

func (f *fileOps) append(_ context.Context, params map[string]any) (map[string]any, error) {
	path, err := f.resolve(stringParam(params, "filename"))
	if err != nil {
		return nil, err
	}
	fh, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	content := stringParam(params, "content")
	if _, err := fh.WriteString(content); err != nil {
		return nil, err
	}
	return map[string]any{
		"filename": stringParam(params, "filename"),
		"appended": len(content),
		"context":  map[string]any{"last_file": stringParam(params, "filename")},
	}, nil
}

func (f *fileOps) delete(_ context.Context, params map[string]any) (map[string]any, error) {
	path, err := f.resolve(stringParam(params, "filename"))
	if err != nil {
		return nil, err
	}
	if err := os.Remove(path); err != nil {
		return nil, err
	}
	return map[string]any{"filename": stringParam(params, "filename"), "deleted": true}, nil
}

func (f *fileOps) list(_ context.Context, params map[string]any) (map[string]any, error) {
	dir := stringParam(params, "path")
	if dir == "" {
		dir = "."
	}
	path, err := f.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	return map[string]any{"path": dir, "entries": names, "count": len(names)}, nil
}
