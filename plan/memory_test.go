package plan

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentMemory_RecordStep(t *testing.T) {
	m := NewAgentMemory()

	m.RecordStep(StepRecord{Command: "list files", Action: "file_operations", Operation: "list_dir", Status: StatusExecuted})
	m.RecordStep(StepRecord{Command: "read file x", Action: "file_operations", Operation: "read_file", Status: StatusFailed, Error: "no such file"})

	steps := m.Steps()
	require.Len(t, steps, 2)
	assert.NotEmpty(t, steps[0].ID)
	assert.False(t, steps[0].Timestamp.IsZero())
	assert.Equal(t, StatusExecuted, steps[0].Status)
	assert.Equal(t, StatusFailed, steps[1].Status)
	assert.Equal(t, "no such file", steps[1].Error)
}

func TestAgentMemory_StepsReturnsCopy(t *testing.T) {
	m := NewAgentMemory()
	m.RecordStep(StepRecord{Action: "echo", Status: StatusExecuted})

	steps := m.Steps()
	steps[0].Action = "mutated"

	assert.Equal(t, "echo", m.Steps()[0].Action)
}

func TestAgentMemory_Context(t *testing.T) {
	m := NewAgentMemory()

	m.SetContext("last_file", "notes.txt")
	v, ok := m.GetContext("last_file")
	require.True(t, ok)
	assert.Equal(t, "notes.txt", v)

	_, ok = m.GetContext("missing")
	assert.False(t, ok)

	m.MergeContext(map[string]any{"last_action": "file_operations", "last_file": "other.txt"})
	snap := m.ContextSnapshot()
	assert.Equal(t, "other.txt", snap["last_file"])
	assert.Equal(t, "file_operations", snap["last_action"])

	// Snapshot mutation must not leak back.
	snap["last_file"] = "evil.txt"
	v, _ = m.GetContext("last_file")
	assert.Equal(t, "other.txt", v)
}

func TestAgentMemory_ConversationCap(t *testing.T) {
	m := NewAgentMemory(func(o *MemoryOptions) { o.MaxTurns = 3 })

	for i := 0; i < 5; i++ {
		m.AddTurn(fmt.Sprintf("user %d", i), fmt.Sprintf("agent %d", i))
	}

	turns := m.Conversation()
	require.Len(t, turns, 3)
	assert.Equal(t, "user 2", turns[0].User)
	assert.Equal(t, "user 4", turns[2].User)
	assert.Equal(t, "agent 4", m.LastAgentUtterance())
}

func TestAgentMemory_DefaultCap(t *testing.T) {
	m := NewAgentMemory()
	for i := 0; i < DefaultMaxTurns+5; i++ {
		m.AddTurn("u", "a")
	}
	assert.Len(t, m.Conversation(), DefaultMaxTurns)
}

func TestAgentMemory_LastAgentUtteranceEmpty(t *testing.T) {
	m := NewAgentMemory()
	assert.Empty(t, m.LastAgentUtterance())
}

func TestAgentMemory_Clone(t *testing.T) {
	m := NewAgentMemory()
	m.RecordStep(StepRecord{Action: "echo", Status: StatusExecuted})
	m.SetContext("k", "v")
	m.AddTurn("hi", "hello")

	c := m.Clone()
	assert.NotEqual(t, m.ID(), c.ID())
	assert.Len(t, c.Steps(), 1)
	assert.Len(t, c.Conversation(), 1)

	c.SetContext("k", "changed")
	v, _ := m.GetContext("k")
	assert.Equal(t, "v", v)
}

func TestAgentMemory_UpdatedAdvances(t *testing.T) {
	m := NewAgentMemory()
	before := m.Updated()
	m.SetContext("k", 1)
	assert.False(t, m.Updated().Before(before))
}
