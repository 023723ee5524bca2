package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("test")
	m.AddResponse("plan this", `{"command": "uptime"}`)

	resp, err := m.Generate(context.Background(), Request{Prompt: "plan this"})
	require.NoError(t, err)
	assert.Equal(t, `{"command": "uptime"}`, resp.Text)

	resp, err = m.Generate(context.Background(), Request{Prompt: "unknown"})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: unknown", resp.Text)
}

func TestMockModel_FailWith(t *testing.T) {
	m := NewMockModel("test")
	cause := errors.New("connection refused")
	m.FailWith(cause)

	_, err := m.Generate(context.Background(), Request{Prompt: "anything"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "mock", te.Provider)
	assert.ErrorIs(t, err, cause)
}

func TestMockModel_ContextCancellation(t *testing.T) {
	m := NewMockModel("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, Request{Prompt: "anything"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModel_Info(t *testing.T) {
	m := NewMockModel("planner-mock")
	info := m.Info()
	assert.Equal(t, "planner-mock", info.Name)
	assert.Equal(t, "mock", info.Provider)
}
