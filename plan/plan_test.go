package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStep_Defaults(t *testing.T) {
	step := NewStep("file_operations", "", nil)

	assert.NotEmpty(t, step.ID)
	assert.Equal(t, "file_operations", step.Action)
	assert.Equal(t, "file_operations", step.Operation)
	assert.NotNil(t, step.Params)
}

func TestNewPlan_DerivesRequiredTools(t *testing.T) {
	p := NewPlan("two tools",
		NewStep("file_operations", "create_file", nil),
		NewStep("clipboard", "copy", nil),
		NewStep("file_operations", "read_file", nil),
	)

	assert.Equal(t, []string{"clipboard", "file_operations"}, p.RequiredTools)
	assert.NotEmpty(t, p.ID)
}

func TestPlan_Validate(t *testing.T) {
	var nilPlan *MultiStepPlan
	assert.Error(t, nilPlan.Validate())
	assert.Error(t, NewPlan("empty").Validate())

	bad := NewPlan("bad", PlanStep{ID: "x"})
	assert.Error(t, bad.Validate())

	good := NewPlan("good", NewStep("echo", "say", map[string]any{"text": "hi"}))
	require.NoError(t, good.Validate())
}

func TestStepCondition_Evaluate(t *testing.T) {
	ctx := map[string]any{
		"last_action": "file_operations",
		"count":       0,
		"flag":        true,
		"empty":       "",
	}

	var nilCond *StepCondition
	assert.True(t, nilCond.Evaluate(ctx))

	tests := []struct {
		name string
		cond StepCondition
		want bool
	}{
		{"missing key", StepCondition{Key: "nope"}, false},
		{"truthy string", StepCondition{Key: "last_action"}, true},
		{"falsy zero", StepCondition{Key: "count"}, false},
		{"falsy empty string", StepCondition{Key: "empty"}, false},
		{"truthy bool", StepCondition{Key: "flag"}, true},
		{"equals match", StepCondition{Key: "last_action", Equals: "file_operations"}, true},
		{"equals mismatch", StepCondition{Key: "last_action", Equals: "clipboard"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Evaluate(ctx))
		})
	}
}

func TestNewMetadata_ClampsConfidence(t *testing.T) {
	assert.Equal(t, DefaultConfidence, NewMetadata(SourcePlanArray, 0).Confidence)
	assert.Equal(t, 1.0, NewMetadata(SourcePlanArray, 1.7).Confidence)
	assert.Equal(t, 0.3, NewMetadata(SourceKeyword, 0.3).Confidence)
}

func TestErrorMetadata(t *testing.T) {
	md := ErrorMetadata("refusal", "I can't help with that")
	assert.True(t, md.IsError)
	assert.Equal(t, "I can't help with that", md.Message)
	assert.Zero(t, md.Confidence)
}
