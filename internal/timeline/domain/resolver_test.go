package domain_test

import (
	"testing"
	"time"

	"pathway/internal/plan/domain/goal"
	scheduledomain "pathway/internal/schedule/domain"
	sharedDomain "pathway/internal/shared/domain"
	"pathway/internal/timeline/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() sharedDomain.EventMetadata {
	return sharedDomain.EventMetadata{
		CorrelationID: uuid.New(),
		Actor:         "asmith",
	}
}

func goalSnapshot() goal.Snapshot {
	return goal.Snapshot{
		ID:           uuid.New(),
		PrisonNumber: "A1234BC",
		Title:        "Improve literacy",
		Area:         "EDUCATION",
		Notes:        "Weekly sessions",
		Status:       goal.StatusActive,
		Steps: []goal.StepSnapshot{
			{ID: uuid.New(), Title: "Enrol in class", Status: goal.StepStatusNotStarted, Sequence: 1},
			{ID: uuid.New(), Title: "Attend first session", Status: goal.StepStatusNotStarted, Sequence: 2},
		},
	}
}

func TestResolveGoal_IdenticalSnapshots(t *testing.T) {
	snapshot := goalSnapshot()

	events := domain.ResolveGoal(snapshot, snapshot, testMetadata())

	assert.Empty(t, events)
}

func TestResolveGoal_ContentChange(t *testing.T) {
	before := goalSnapshot()
	after := before
	after.Notes = "Twice-weekly sessions"

	events := domain.ResolveGoal(before, after, testMetadata())

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeGoalUpdated, events[0].EventType())
	assert.Equal(t, before.ID, events[0].AggregateID())
	assert.Equal(t, "A1234BC", events[0].PrisonNumber())
	assert.Equal(t, after.Title, events[0].Context()["goal_title"])
}

func TestResolveGoal_TargetDateChange(t *testing.T) {
	before := goalSnapshot()
	after := before
	target := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	after.TargetDate = &target

	events := domain.ResolveGoal(before, after, testMetadata())

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeGoalUpdated, events[0].EventType())
}

func TestResolveGoal_StatusChange(t *testing.T) {
	tests := []struct {
		status goal.Status
		want   domain.EventType
	}{
		{goal.StatusCompleted, domain.EventTypeGoalCompleted},
		{goal.StatusArchived, domain.EventTypeGoalArchived},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			before := goalSnapshot()
			after := before
			after.Status = tt.status

			events := domain.ResolveGoal(before, after, testMetadata())

			require.Len(t, events, 1)
			assert.Equal(t, tt.want, events[0].EventType())
		})
	}
}

func TestResolveGoal_ReactivationEmitsStarted(t *testing.T) {
	before := goalSnapshot()
	before.Status = goal.StatusArchived
	after := before
	after.Status = goal.StatusActive

	events := domain.ResolveGoal(before, after, testMetadata())

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeGoalStarted, events[0].EventType())
}

func TestResolveGoal_StepStatusChanges(t *testing.T) {
	before := goalSnapshot()
	after := before
	after.Steps = []goal.StepSnapshot{
		{ID: before.Steps[0].ID, Title: before.Steps[0].Title, Status: goal.StepStatusStarted, Sequence: 1},
		{ID: before.Steps[1].ID, Title: before.Steps[1].Title, Status: goal.StepStatusCompleted, Sequence: 2},
	}

	events := domain.ResolveGoal(before, after, testMetadata())

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventTypeStepStarted, events[0].EventType())
	assert.Equal(t, before.Steps[0].Title, events[0].Context()["step_title"])
	assert.Equal(t, domain.EventTypeStepCompleted, events[1].EventType())
	assert.Equal(t, "2", events[1].Context()["step_sequence"])
}

func TestResolveGoal_AddedStepEmitsOnlyGoalUpdated(t *testing.T) {
	before := goalSnapshot()
	after := before
	after.Steps = append([]goal.StepSnapshot{}, before.Steps...)
	after.Steps = append(after.Steps, goal.StepSnapshot{
		ID: uuid.New(), Title: "Sit the exam", Status: goal.StepStatusNotStarted, Sequence: 3,
	})

	events := domain.ResolveGoal(before, after, testMetadata())

	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeGoalUpdated, events[0].EventType())
}

func TestResolveGoal_FixedOrderAndSharedCorrelation(t *testing.T) {
	before := goalSnapshot()
	after := before
	after.Notes = "Updated notes"
	after.Status = goal.StatusCompleted
	after.Steps = []goal.StepSnapshot{
		{ID: before.Steps[1].ID, Title: before.Steps[1].Title, Status: goal.StepStatusCompleted, Sequence: 1},
		{ID: before.Steps[0].ID, Title: before.Steps[0].Title, Status: goal.StepStatusCompleted, Sequence: 2},
	}
	metadata := testMetadata()

	events := domain.ResolveGoal(before, after, metadata)

	require.Len(t, events, 4)
	assert.Equal(t, domain.EventTypeGoalUpdated, events[0].EventType())
	assert.Equal(t, domain.EventTypeGoalCompleted, events[1].EventType())
	// Step events follow the order of the after snapshot, not the before one.
	assert.Equal(t, before.Steps[1].Title, events[2].Context()["step_title"])
	assert.Equal(t, before.Steps[0].Title, events[3].Context()["step_title"])
	for _, event := range events {
		assert.Equal(t, metadata.CorrelationID, event.Metadata().CorrelationID)
		assert.Equal(t, "asmith", event.Metadata().Actor)
	}
}

func TestResolveGoal_DoesNotMutateSnapshots(t *testing.T) {
	before := goalSnapshot()
	after := before
	after.Steps = []goal.StepSnapshot{
		{ID: before.Steps[0].ID, Title: before.Steps[0].Title, Status: goal.StepStatusCompleted, Sequence: 1},
	}
	beforeCopy := before
	afterCopy := after

	domain.ResolveGoal(before, after, testMetadata())

	assert.Equal(t, beforeCopy, before)
	assert.Equal(t, afterCopy, after)
}

func TestGoalCreated(t *testing.T) {
	snapshot := goalSnapshot()
	metadata := testMetadata()

	event := domain.GoalCreated(snapshot, metadata)

	assert.Equal(t, domain.EventTypeGoalCreated, event.EventType())
	assert.Equal(t, snapshot.ID, event.AggregateID())
	assert.Equal(t, "timeline.goal.created", event.RoutingKey())
	assert.Equal(t, metadata.CorrelationID, event.Metadata().CorrelationID)
}

func scheduleSnapshot() scheduledomain.Snapshot {
	return scheduledomain.Snapshot{
		ID:           uuid.New(),
		Type:         scheduledomain.TypeInduction,
		PrisonNumber: "A1234BC",
		PrisonID:     "MDI",
		Rule:         scheduledomain.RuleNewPrisonAdmission,
		Window: scheduledomain.Window{
			DateFrom: time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2025, 4, 27, 0, 0, 0, 0, time.UTC),
		},
		Status: scheduledomain.StatusScheduled,
	}
}

func TestResolveSchedule_IdenticalSnapshots(t *testing.T) {
	snapshot := scheduleSnapshot()

	events := domain.ResolveSchedule(snapshot, snapshot, testMetadata())

	assert.Empty(t, events)
}

func TestResolveSchedule_StatusChange(t *testing.T) {
	before := scheduleSnapshot()
	after := before
	after.Status = scheduledomain.StatusExemptPrisonerTransfer

	events := domain.ResolveSchedule(before, after, testMetadata())

	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, domain.EventTypeScheduleStatusUpdated, event.EventType())
	assert.Equal(t, "MDI", event.PrisonID())
	context := event.Context()
	assert.Equal(t, "SCHEDULED", context["old_status"])
	assert.Equal(t, "EXEMPT_PRISONER_TRANSFER", context["new_status"])
	assert.Equal(t, "2025-04-07", context["old_date_from"])
	assert.Equal(t, "2025-04-27", context["new_date_to"])
}

func TestResolveSchedule_WindowChangeOnly(t *testing.T) {
	before := scheduleSnapshot()
	after := before
	after.Window = scheduledomain.Window{
		DateFrom: before.Window.DateFrom.AddDate(0, 1, 0),
		DateTo:   before.Window.DateTo.AddDate(0, 1, 0),
	}

	events := domain.ResolveSchedule(before, after, testMetadata())

	require.Len(t, events, 1)
	context := events[0].Context()
	assert.Equal(t, "SCHEDULED", context["old_status"])
	assert.Equal(t, "SCHEDULED", context["new_status"])
	assert.Equal(t, "2025-05-07", context["new_date_from"])
}

func TestResolveSchedule_ExemptionReasonInContext(t *testing.T) {
	before := scheduleSnapshot()
	after := before
	after.Status = scheduledomain.StatusExemptPrisonOther
	reason := "Wing lockdown"
	after.ExemptionReason = &reason

	events := domain.ResolveSchedule(before, after, testMetadata())

	require.Len(t, events, 1)
	assert.Equal(t, "Wing lockdown", events[0].Context()["exemption_reason"])
}
