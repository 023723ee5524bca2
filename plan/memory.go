package plan

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// StepStatus classifies the outcome of one attempted step.
type StepStatus string

const (
	// StatusExecuted marks a step whose tool ran and returned a value.
	StatusExecuted StepStatus = "executed"
	// StatusSkipped marks a step whose condition evaluated false.
	StatusSkipped StepStatus = "skipped"
	// StatusFailed marks a step whose tool was missing or returned an error.
	StatusFailed StepStatus = "failed"
)

// StepRecord is one append-only entry in the execution log.
type StepRecord struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Command   string         `json:"command"`
	Action    string         `json:"action"`
	Operation string         `json:"operation,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	Status    StepStatus     `json:"status"`
	Output    map[string]any `json:"output,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Turn is one user/agent exchange in the conversation transcript.
type Turn struct {
	User      string    `json:"user"`
	Agent     string    `json:"agent"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultMaxTurns caps the conversation transcript; oldest turns are evicted
// first once the cap is reached.
const DefaultMaxTurns = 20

// MemoryOptions configures AgentMemory construction.
type MemoryOptions struct {
	// MaxTurns bounds the conversation transcript. Values <= 0 fall back to
	// DefaultMaxTurns.
	MaxTurns int
}

// AgentMemory is the engine's running log: an append-only sequence of step
// records, a free-form context map mutated by steps, and a bounded
// conversation transcript. One engine instance owns one memory for the
// lifetime of its session. Safe for concurrent access.
//
// Contract (mirrors the usual session-container rules):
//   - mutations update the Updated timestamp
//   - accessors return defensive copies so callers cannot mutate internals
//   - the transcript never exceeds its cap, evicting oldest turns first
type AgentMemory struct {
	mu           sync.RWMutex
	id           string
	steps        []StepRecord
	context      map[string]any
	conversation []Turn
	maxTurns     int
	created      time.Time
	updated      time.Time
}

// NewAgentMemory creates an empty memory with optional overrides.
func NewAgentMemory(optFns ...func(o *MemoryOptions)) *AgentMemory {
	opts := MemoryOptions{MaxTurns: DefaultMaxTurns}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	now := time.Now().UTC()
	return &AgentMemory{
		id:       uuid.NewString(),
		context:  map[string]any{},
		maxTurns: opts.MaxTurns,
		created:  now,
		updated:  now,
	}
}

// ID returns the memory's unique identifier.
func (m *AgentMemory) ID() string { return m.id }

// RecordStep appends one record to the execution log. The engine calls this
// exactly once per attempted step, including skipped and failed ones.
func (m *AgentMemory) RecordStep(rec StepRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	m.steps = append(m.steps, rec)
	m.updated = time.Now().UTC()
}

// Steps returns a copy of the execution log in append order.
func (m *AgentMemory) Steps() []StepRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StepRecord, len(m.steps))
	copy(out, m.steps)
	return out
}

// SetContext stores one key/value pair in the context map.
func (m *AgentMemory) SetContext(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.context[key] = value
	m.updated = time.Now().UTC()
}

// GetContext returns the value and existence flag for a context key.
func (m *AgentMemory) GetContext(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.context[key]
	return v, ok
}

// MergeContext merges all pairs from delta into the context map.
func (m *AgentMemory) MergeContext(delta map[string]any) {
	if len(delta) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range delta {
		m.context[k] = v
	}
	m.updated = time.Now().UTC()
}

// ContextSnapshot returns a shallow copy of the context map for condition
// evaluation.
func (m *AgentMemory) ContextSnapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.context))
	for k, v := range m.context {
		out[k] = v
	}
	return out
}

// AddTurn appends one user/agent exchange, evicting the oldest turn when the
// transcript is at capacity.
func (m *AgentMemory) AddTurn(user, agent string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conversation = append(m.conversation, Turn{User: user, Agent: agent, Timestamp: time.Now().UTC()})
	if len(m.conversation) > m.maxTurns {
		m.conversation = m.conversation[len(m.conversation)-m.maxTurns:]
	}
	m.updated = time.Now().UTC()
}

// Conversation returns a copy of the transcript, oldest turn first.
func (m *AgentMemory) Conversation() []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Turn, len(m.conversation))
	copy(out, m.conversation)
	return out
}

// LastAgentUtterance returns the agent side of the most recent turn, or ""
// when the transcript is empty. Planners use it to resolve follow-up
// phrasing.
func (m *AgentMemory) LastAgentUtterance() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.conversation) == 0 {
		return ""
	}
	return m.conversation[len(m.conversation)-1].Agent
}

// Clone returns a deep copy with a fresh ID, detached from the original.
// Useful for forking a session into what-if execution.
func (m *AgentMemory) Clone() *AgentMemory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := &AgentMemory{
		id:       uuid.NewString(),
		steps:    make([]StepRecord, len(m.steps)),
		context:  make(map[string]any, len(m.context)),
		maxTurns: m.maxTurns,
		created:  m.created,
		updated:  m.updated,
	}
	copy(out.steps, m.steps)
	for k, v := range m.context {
		out.context[k] = v
	}
	out.conversation = make([]Turn, len(m.conversation))
	copy(out.conversation, m.conversation)
	return out
}

// Created returns the creation timestamp.
func (m *AgentMemory) Created() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.created
}

// Updated returns the last mutation timestamp.
func (m *AgentMemory) Updated() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.updated
}
