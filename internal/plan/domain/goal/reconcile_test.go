package goal_test

import (
	"testing"

	"pathway/internal/plan/domain/goal"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustStep(t *testing.T, title string, sequence int) *goal.Step {
	t.Helper()
	s, err := goal.NewStep(title, goal.StepStatusNotStarted, sequence)
	require.NoError(t, err)
	return s
}

func idOf(s *goal.Step) *uuid.UUID {
	id := s.ID()
	return &id
}

func TestReconcileSteps_AddUpdateRemove(t *testing.T) {
	// Existing: A(1), B(2), C(3). Desired: B first, new D last; A and C dropped.
	a := mustStep(t, "Attend workshop", 1)
	b := mustStep(t, "Book assessment", 2)
	c := mustStep(t, "Complete course", 3)

	desired := []goal.StepInput{
		{ID: idOf(b), Title: "Book assessment", Status: goal.StepStatusStarted, Position: 1},
		{Title: "Find a mentor", Status: goal.StepStatusNotStarted, Position: 99},
	}

	resolved, removed, err := goal.ReconcileSteps([]*goal.Step{a, b, c}, desired)

	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, b.ID(), resolved[0].ID())
	assert.Equal(t, 1, resolved[0].Sequence())
	assert.Equal(t, goal.StepStatusStarted, resolved[0].Status())
	assert.Equal(t, "Find a mentor", resolved[1].Title())
	assert.Equal(t, 2, resolved[1].Sequence())

	require.Len(t, removed, 2)
	assert.Equal(t, a.ID(), removed[0].ID())
	assert.Equal(t, c.ID(), removed[1].ID())
}

func TestReconcileSteps_SequencesAreContiguous(t *testing.T) {
	tests := []struct {
		name      string
		positions []int
	}{
		{"gapped", []int{5, 20, 90}},
		{"duplicated", []int{2, 2, 2}},
		{"below range", []int{-3, 0, 1}},
		{"reversed", []int{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desired := make([]goal.StepInput, len(tt.positions))
			for i, pos := range tt.positions {
				desired[i] = goal.StepInput{Title: "Step", Position: pos}
			}

			resolved, _, err := goal.ReconcileSteps(nil, desired)

			require.NoError(t, err)
			require.Len(t, resolved, len(tt.positions))
			for i, s := range resolved {
				assert.Equal(t, i+1, s.Sequence())
			}
		})
	}
}

func TestReconcileSteps_DuplicatePositionsKeepDesiredOrder(t *testing.T) {
	desired := []goal.StepInput{
		{Title: "first of the pair", Position: 1},
		{Title: "second of the pair", Position: 1},
	}

	resolved, _, err := goal.ReconcileSteps(nil, desired)

	require.NoError(t, err)
	assert.Equal(t, "first of the pair", resolved[0].Title())
	assert.Equal(t, "second of the pair", resolved[1].Title())
}

func TestReconcileSteps_MatchedStepKeepsIdentity(t *testing.T) {
	existing := mustStep(t, "Original title", 1)
	created := existing.CreatedAt()

	desired := []goal.StepInput{
		{ID: idOf(existing), Title: "Renamed title", Status: goal.StepStatusCompleted, Position: 4},
	}

	resolved, removed, err := goal.ReconcileSteps([]*goal.Step{existing}, desired)

	require.NoError(t, err)
	require.Empty(t, removed)
	require.Len(t, resolved, 1)
	assert.Equal(t, existing.ID(), resolved[0].ID())
	assert.Equal(t, created, resolved[0].CreatedAt())
	assert.Equal(t, "Renamed title", resolved[0].Title())
	assert.Equal(t, goal.StepStatusCompleted, resolved[0].Status())
	assert.Equal(t, 1, resolved[0].Sequence())
}

func TestReconcileSteps_Idempotent(t *testing.T) {
	a := mustStep(t, "One", 1)
	b := mustStep(t, "Two", 2)

	desired := []goal.StepInput{
		{ID: idOf(b), Title: "Two", Position: 1},
		{ID: idOf(a), Title: "One", Position: 2},
	}

	first, _, err := goal.ReconcileSteps([]*goal.Step{a, b}, desired)
	require.NoError(t, err)

	second, removed, err := goal.ReconcileSteps(first, desired)
	require.NoError(t, err)
	require.Empty(t, removed)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID(), second[i].ID())
		assert.Equal(t, first[i].Title(), second[i].Title())
		assert.Equal(t, first[i].Sequence(), second[i].Sequence())
	}
}

func TestReconcileSteps_UnknownIDCreatesFreshStep(t *testing.T) {
	ghost := uuid.New()
	desired := []goal.StepInput{
		{ID: &ghost, Title: "Never persisted", Position: 1},
	}

	resolved, removed, err := goal.ReconcileSteps(nil, desired)

	require.NoError(t, err)
	require.Empty(t, removed)
	require.Len(t, resolved, 1)
	assert.NotEqual(t, ghost, resolved[0].ID())
}

func TestReconcileSteps_EmptyDesiredEmptiesList(t *testing.T) {
	a := mustStep(t, "Only step", 1)

	resolved, removed, err := goal.ReconcileSteps([]*goal.Step{a}, nil)

	require.NoError(t, err)
	assert.Empty(t, resolved)
	require.Len(t, removed, 1)
	assert.Equal(t, a.ID(), removed[0].ID())
}

func TestReconcileSteps_EmptyTitleRejected(t *testing.T) {
	desired := []goal.StepInput{{Title: "   ", Position: 1}}

	_, _, err := goal.ReconcileSteps(nil, desired)

	assert.ErrorIs(t, err, goal.ErrEmptyStepTitle)
}
