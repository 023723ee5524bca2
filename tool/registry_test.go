package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubTool(name, desc string) *FunctionTool {
	return NewFunctionTool(name, desc).
		WithAction("run", nil, func(_ context.Context, params map[string]any) (map[string]any, error) {
			return map[string]any{"from": name}, nil
		})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubTool("echo", "repeats text"))

	tl, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", tl.Name())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubTool("echo", "first"))
	reg.Register(newStubTool("echo", "second"))

	tl, ok := reg.Get("echo")
	require.True(t, ok)
	assert.Equal(t, "second", tl.Description())
	assert.Len(t, reg.Names(), 1)
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubTool("zeta", ""))
	reg.Register(newStubTool("alpha", ""))
	reg.Register(newStubTool("mid", ""))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Names())
}

func TestRegistry_Capabilities(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newStubTool("echo", "repeats text"))

	caps := reg.Capabilities()
	require.Contains(t, caps, "echo")
	assert.Equal(t, "repeats text", caps["echo"].Description)
	assert.Equal(t, []string{"run"}, caps["echo"].Actions)
}
