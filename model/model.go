// Package model defines the minimal text-in / text-out interface the planner
// uses to consult a remote model, plus a deterministic mock for tests.
// Provider adapters live in the openai and anthropic subpackages.
package model

import (
	"context"
	"fmt"
)

// Request is the rendered prompt sent to a model backend.
type Request struct {
	// System carries environment context (available tools, output format).
	System string `json:"system,omitempty"`
	// Prompt is the user command plus any conversational context.
	Prompt string `json:"prompt"`
}

// Response is the free text returned by a model backend. It may or may not
// embed structured data; downstream the extractor is its sole consumer.
type Response struct {
	Text string `json:"text"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the interface required by the planner's remote tier.
type Model interface {
	// Generate produces a completion for the request. Implementations must
	// honor ctx cancellation; the planner bounds every call with a timeout.
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// TransportError wraps remote-model failures (network, auth, malformed SDK
// responses). It is always recoverable: the planner falls through to local
// tiers instead of stalling.
type TransportError struct {
	Provider string `json:"provider"`
	Err      error  `json:"-"`
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model transport error (%s): %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MockModel is a lightweight in-memory Model useful for tests and examples.
// Responses are keyed by exact prompt; unknown prompts get a canned echo.
type MockModel struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// FailWith makes every Generate call return err wrapped as a TransportError.
func (m *MockModel) FailWith(err error) { m.err = err }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	if m.err != nil {
		return Response{}, &TransportError{Provider: m.info.Provider, Err: m.err}
	}
	select {
	case <-ctx.Done():
		return Response{}, &TransportError{Provider: m.info.Provider, Err: ctx.Err()}
	default:
	}
	if text, ok := m.responses[req.Prompt]; ok {
		return Response{Text: text}, nil
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", req.Prompt)}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
