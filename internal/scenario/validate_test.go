package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/refcell/internal/model"
)

// valid is a minimal scenario exercising every op kind once.
func validScenario() *model.Scenario {
	return &model.Scenario{
		Name: "full",
		Steps: []model.Step{
			{Op: model.OpAlloc, Target: "a", Value: 1, Cell: true},
			{Op: model.OpAlloc, Target: "b", Value: 2},
			{Op: model.OpClone, Target: "a2", From: "a"},
			{Op: model.OpDowngrade, Target: "w", From: "a"},
			{Op: model.OpUpgrade, Target: "u", From: "w"},
			{Op: model.OpLink, From: "a", To: "b", Kind: "strong"},
			{Op: model.OpLink, From: "b", To: "a", Kind: "weak"},
			{Op: model.OpBorrow, Target: "r", From: "a"},
			{Op: model.OpRelease, Target: "r"},
			{Op: model.OpBorrowMut, Target: "m", From: "a2"},
			{Op: model.OpSet, Target: "m", Value: 9},
			{Op: model.OpRelease, Target: "m"},
			{Op: model.OpCount, Target: "w"},
			{Op: model.OpDrop, Target: "u"},
			{Op: model.OpDrop, Target: "w"},
			{Op: model.OpDrop, Target: "a2"},
			{Op: model.OpDrop, Target: "a"},
			{Op: model.OpDrop, Target: "b"},
		},
	}
}

// TestValidate_FullScenarioPasses proves the validator accepts a
// scenario that uses every operation correctly.
func TestValidate_FullScenarioPasses(t *testing.T) {
	assert.Empty(t, Validate(validScenario()))
}

// TestValidate_ScenarioLevelErrors covers name and empty-steps checks.
func TestValidate_ScenarioLevelErrors(t *testing.T) {
	t.Run("bad name", func(t *testing.T) {
		s := validScenario()
		s.Name = "has spaces"
		errs := Validate(s)
		require.NotEmpty(t, errs)
		assert.Equal(t, "name", errs[0].Field)
		assert.Equal(t, 0, errs[0].Step)
	})

	t.Run("no steps", func(t *testing.T) {
		errs := Validate(&model.Scenario{Name: "empty"})
		require.Len(t, errs, 1)
		assert.Equal(t, "steps", errs[0].Field)
	})
}

// TestValidate_StepErrors is the table of binding-rule violations the
// validator must catch before a run.
func TestValidate_StepErrors(t *testing.T) {
	tests := []struct {
		name     string
		steps    []model.Step
		field    string
		contains string
	}{
		{
			name:     "unknown op",
			steps:    []model.Step{{Op: "free", Target: "a"}},
			field:    "op",
			contains: "unknown op",
		},
		{
			name:     "missing target",
			steps:    []model.Step{{Op: model.OpAlloc}},
			field:    "target",
			contains: "required",
		},
		{
			name: "rebinding live handle",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpAlloc, Target: "a"},
			},
			field:    "target",
			contains: "already bound",
		},
		{
			name:     "from not bound",
			steps:    []model.Step{{Op: model.OpClone, Target: "b", From: "ghost"}},
			field:    "from",
			contains: "not bound",
		},
		{
			name: "upgrade of strong handle",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpUpgrade, Target: "u", From: "a"},
			},
			field:    "from",
			contains: "weak",
		},
		{
			name: "downgrade of weak handle",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpDowngrade, Target: "w", From: "a"},
				{Op: model.OpDowngrade, Target: "w2", From: "w"},
			},
			field:    "from",
			contains: "strong",
		},
		{
			name: "borrow of plain allocation",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpBorrow, Target: "r", From: "a"},
			},
			field:    "from",
			contains: "cell: true",
		},
		{
			name: "set on non-guard",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a", Cell: true},
				{Op: model.OpSet, Target: "a", Value: 1},
			},
			field:    "target",
			contains: "exclusive borrow guard",
		},
		{
			name: "drop of guard",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a", Cell: true},
				{Op: model.OpBorrow, Target: "r", From: "a"},
				{Op: model.OpDrop, Target: "r"},
			},
			field:    "target",
			contains: "use release",
		},
		{
			name: "release of handle",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpRelease, Target: "a"},
			},
			field:    "target",
			contains: "use drop",
		},
		{
			name: "bad link kind",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpAlloc, Target: "b"},
				{Op: model.OpLink, From: "a", To: "b", Kind: "soft"},
			},
			field:    "kind",
			contains: "invalid link kind",
		},
		{
			name: "link to weak handle",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpDowngrade, Target: "w", From: "a"},
				{Op: model.OpLink, From: "a", To: "w"},
			},
			field:    "to",
			contains: "strong",
		},
		{
			name: "count of guard",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a", Cell: true},
				{Op: model.OpBorrow, Target: "r", From: "a"},
				{Op: model.OpCount, Target: "r"},
			},
			field:    "target",
			contains: "borrow guard",
		},
		{
			name: "use after drop",
			steps: []model.Step{
				{Op: model.OpAlloc, Target: "a"},
				{Op: model.OpDrop, Target: "a"},
				{Op: model.OpClone, Target: "b", From: "a"},
			},
			field:    "from",
			contains: "not bound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&model.Scenario{Name: "t", Steps: tt.steps})
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if e.Field == tt.field && strings.Contains(e.Message, tt.contains) {
					found = true
				}
			}
			assert.True(t, found, "expected error on field %q containing %q, got %v", tt.field, tt.contains, errs)
		})
	}
}

// TestValidate_RebindAfterDrop verifies that names can be reused once
// the previous binding is gone.
func TestValidate_RebindAfterDrop(t *testing.T) {
	errs := Validate(&model.Scenario{
		Name: "reuse",
		Steps: []model.Step{
			{Op: model.OpAlloc, Target: "a"},
			{Op: model.OpDrop, Target: "a"},
			{Op: model.OpAlloc, Target: "a"},
		},
	})
	assert.Empty(t, errs)
}

// TestValidate_CollectsAllErrors proves validation does not stop at the
// first problem.
func TestValidate_CollectsAllErrors(t *testing.T) {
	errs := Validate(&model.Scenario{
		Name: "multi",
		Steps: []model.Step{
			{Op: model.OpClone, Target: "b", From: "ghost"},
			{Op: model.OpDrop, Target: "also-ghost"},
		},
	})
	assert.Len(t, errs, 2)
}

// TestValidationError_Error checks both message formats.
func TestValidationError_Error(t *testing.T) {
	withStep := ValidationError{Step: 3, Field: "from", Message: "nope"}
	assert.Equal(t, "scenario validation error: step 3: from: nope", withStep.Error())

	scenarioLevel := ValidationError{Field: "name", Message: "empty"}
	assert.Equal(t, "scenario validation error: name: empty", scenarioLevel.Error())
}
