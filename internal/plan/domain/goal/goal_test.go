package goal_test

import (
	"testing"
	"time"

	"pathway/internal/plan/domain/goal"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGoal(t *testing.T) *goal.Goal {
	t.Helper()
	g, err := goal.NewGoal("A1234BC", "Improve numeracy", "EDUCATION_AND_TRAINING", nil, []goal.StepInput{
		{Title: "Enrol on functional skills course", Position: 1},
	})
	require.NoError(t, err)
	return g
}

func TestNewGoal(t *testing.T) {
	target := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	g, err := goal.NewGoal("A1234BC", "  Improve numeracy  ", "EDUCATION_AND_TRAINING", &target, []goal.StepInput{
		{Title: "Enrol on course", Position: 1},
		{Title: "Sit the exam", Position: 2},
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, g.ID())
	assert.Equal(t, "A1234BC", g.PrisonNumber())
	assert.Equal(t, "Improve numeracy", g.Title())
	assert.Equal(t, goal.StatusActive, g.Status())
	require.Len(t, g.Steps(), 2)
	assert.Equal(t, 1, g.Steps()[0].Sequence())
	assert.Equal(t, 2, g.Steps()[1].Sequence())
}

func TestNewGoal_Validation(t *testing.T) {
	steps := []goal.StepInput{{Title: "A step", Position: 1}}

	t.Run("empty title", func(t *testing.T) {
		_, err := goal.NewGoal("A1234BC", "  ", "", nil, steps)
		assert.ErrorIs(t, err, goal.ErrEmptyTitle)
	})

	t.Run("empty prison number", func(t *testing.T) {
		_, err := goal.NewGoal("", "Title", "", nil, steps)
		assert.ErrorIs(t, err, goal.ErrEmptyPrisonNumber)
	})

	t.Run("no steps", func(t *testing.T) {
		_, err := goal.NewGoal("A1234BC", "Title", "", nil, nil)
		var invariant *goal.InvariantViolationError
		assert.ErrorAs(t, err, &invariant)
	})
}

func TestGoal_UpdateSteps_RejectsEmptyDesired(t *testing.T) {
	g := newTestGoal(t)

	_, err := g.UpdateSteps(nil)

	var invariant *goal.InvariantViolationError
	require.ErrorAs(t, err, &invariant)
	assert.Len(t, g.Steps(), 1) // unchanged
}

func TestGoal_UpdateSteps_ReturnsRemoved(t *testing.T) {
	g := newTestGoal(t)
	original := g.Steps()[0]

	removed, err := g.UpdateSteps([]goal.StepInput{
		{Title: "A different step entirely", Position: 1},
	})

	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, original.ID(), removed[0].ID())
	require.Len(t, g.Steps(), 1)
	assert.NotEqual(t, original.ID(), g.Steps()[0].ID())
}

func TestGoal_Complete(t *testing.T) {
	g := newTestGoal(t)

	require.NoError(t, g.Complete())
	assert.Equal(t, goal.StatusCompleted, g.Status())

	assert.ErrorIs(t, g.Complete(), goal.ErrGoalAlreadyComplete)
}

func TestGoal_Archive(t *testing.T) {
	g := newTestGoal(t)

	require.NoError(t, g.Archive())
	assert.Equal(t, goal.StatusArchived, g.Status())

	// Idempotent.
	require.NoError(t, g.Archive())

	// Archived goals reject content mutation.
	assert.ErrorIs(t, g.SetTitle("New title"), goal.ErrGoalArchived)
	_, err := g.UpdateSteps([]goal.StepInput{{Title: "Step", Position: 1}})
	assert.ErrorIs(t, err, goal.ErrGoalArchived)
}

func TestGoal_Reactivate(t *testing.T) {
	g := newTestGoal(t)
	require.NoError(t, g.Archive())

	require.NoError(t, g.Reactivate())

	assert.Equal(t, goal.StatusActive, g.Status())
}

func TestGoal_SetArea(t *testing.T) {
	g := newTestGoal(t)

	require.NoError(t, g.SetArea("  EMPLOYMENT  "))
	assert.Equal(t, "EMPLOYMENT", g.Area())

	require.NoError(t, g.Archive())
	assert.ErrorIs(t, g.SetArea("HEALTH"), goal.ErrGoalArchived)
}

func TestSnapshot_Equal(t *testing.T) {
	g, err := goal.NewGoal("A1234BC", "Improve numeracy", "EDUCATION_AND_TRAINING", nil, []goal.StepInput{
		{Title: "Enrol on course", Position: 1},
		{Title: "Sit the exam", Position: 2},
	})
	require.NoError(t, err)
	firstID := g.Steps()[0].ID()
	secondID := g.Steps()[1].ID()

	before := g.Snapshot()
	assert.True(t, before.Equal(g.Snapshot()))

	// Reordering the steps keeps the count but changes the state.
	_, err = g.UpdateSteps([]goal.StepInput{
		{ID: &secondID, Title: "Sit the exam", Position: 1},
		{ID: &firstID, Title: "Enrol on course", Position: 2},
	})
	require.NoError(t, err)
	assert.False(t, before.Equal(g.Snapshot()))

	// Restoring the original order restores equality.
	_, err = g.UpdateSteps([]goal.StepInput{
		{ID: &firstID, Title: "Enrol on course", Position: 1},
		{ID: &secondID, Title: "Sit the exam", Position: 2},
	})
	require.NoError(t, err)
	assert.True(t, before.Equal(g.Snapshot()))

	// Retitling one step changes the state too.
	_, err = g.UpdateSteps([]goal.StepInput{
		{ID: &firstID, Title: "Enrol on the advanced course", Position: 1},
		{ID: &secondID, Title: "Sit the exam", Position: 2},
	})
	require.NoError(t, err)
	assert.False(t, before.Equal(g.Snapshot()))
}

func TestGoal_Snapshot_IsDetached(t *testing.T) {
	g := newTestGoal(t)
	before := g.Snapshot()

	require.NoError(t, g.SetTitle("Changed after snapshot"))
	_, err := g.UpdateSteps([]goal.StepInput{{Title: "Replacement step", Position: 1}})
	require.NoError(t, err)

	assert.Equal(t, "Improve numeracy", before.Title)
	require.Len(t, before.Steps, 1)
	assert.Equal(t, "Enrol on functional skills course", before.Steps[0].Title)
}
