package domain

import (
	"strconv"

	"pathway/internal/plan/domain/goal"
	scheduledomain "pathway/internal/schedule/domain"
	sharedDomain "pathway/internal/shared/domain"
)

var goalStatusEvents = map[goal.Status]EventType{
	goal.StatusActive:    EventTypeGoalStarted,
	goal.StatusCompleted: EventTypeGoalCompleted,
	goal.StatusArchived:  EventTypeGoalArchived,
}

var stepStatusEvents = map[goal.StepStatus]EventType{
	goal.StepStatusNotStarted: EventTypeStepNotStarted,
	goal.StepStatusStarted:    EventTypeStepStarted,
	goal.StepStatusCompleted:  EventTypeStepCompleted,
}

// GoalCreated produces the single event recording a goal's creation. All
// other goal events come out of ResolveGoal.
func GoalCreated(snapshot goal.Snapshot, metadata sharedDomain.EventMetadata) *Event {
	event := NewEvent(EventTypeGoalCreated, snapshot.ID, AggregateTypeGoal, snapshot.PrisonNumber, "", map[string]string{
		"goal_title": snapshot.Title,
	})
	event.SetMetadata(metadata)
	return event
}

// ResolveGoal compares two snapshots of the same goal and emits one event per
// noticed change, in a fixed order: the goal's own content update first, then
// its status change, then step status changes in the order the steps appear
// in the after snapshot. Identical snapshots produce no events. All events
// share the metadata's correlation id.
//
// Newly added steps emit no event of their own; the change of step count is
// content and surfaces through GOAL_UPDATED.
func ResolveGoal(before, after goal.Snapshot, metadata sharedDomain.EventMetadata) []*Event {
	var events []*Event

	if goalContentChanged(before, after) {
		events = append(events, NewEvent(EventTypeGoalUpdated, after.ID, AggregateTypeGoal, after.PrisonNumber, "", map[string]string{
			"goal_title": after.Title,
		}))
	}

	if before.Status != after.Status {
		if eventType, ok := goalStatusEvents[after.Status]; ok {
			events = append(events, NewEvent(eventType, after.ID, AggregateTypeGoal, after.PrisonNumber, "", map[string]string{
				"goal_title": after.Title,
			}))
		}
	}

	beforeSteps := make(map[string]goal.StepSnapshot, len(before.Steps))
	for _, step := range before.Steps {
		beforeSteps[step.ID.String()] = step
	}
	for _, step := range after.Steps {
		prior, ok := beforeSteps[step.ID.String()]
		if !ok || prior.Status == step.Status {
			continue
		}
		events = append(events, NewEvent(stepStatusEvents[step.Status], after.ID, AggregateTypeGoal, after.PrisonNumber, "", map[string]string{
			"goal_title":    after.Title,
			"step_title":    step.Title,
			"step_sequence": strconv.Itoa(step.Sequence),
		}))
	}

	for _, event := range events {
		event.SetMetadata(metadata)
	}
	return events
}

func goalContentChanged(before, after goal.Snapshot) bool {
	if before.Title != after.Title || before.Area != after.Area || before.Notes != after.Notes {
		return true
	}
	if (before.TargetDate == nil) != (after.TargetDate == nil) {
		return true
	}
	if before.TargetDate != nil && !before.TargetDate.Equal(*after.TargetDate) {
		return true
	}
	return len(before.Steps) != len(after.Steps)
}

// ResolveSchedule compares two snapshots of the same schedule. A changed
// status, window or exemption reason yields one SCHEDULE_STATUS_UPDATED event
// carrying the old and new values; identical snapshots yield nothing.
func ResolveSchedule(before, after scheduledomain.Snapshot, metadata sharedDomain.EventMetadata) []*Event {
	if before.Status == after.Status &&
		before.Window.Equal(after.Window) &&
		equalReason(before.ExemptionReason, after.ExemptionReason) {
		return nil
	}

	context := map[string]string{
		"schedule_type": string(after.Type),
		"old_status":    string(before.Status),
		"new_status":    string(after.Status),
		"old_date_from": before.Window.DateFrom.Format("2006-01-02"),
		"old_date_to":   before.Window.DateTo.Format("2006-01-02"),
		"new_date_from": after.Window.DateFrom.Format("2006-01-02"),
		"new_date_to":   after.Window.DateTo.Format("2006-01-02"),
	}
	if after.ExemptionReason != nil {
		context["exemption_reason"] = *after.ExemptionReason
	}

	event := NewEvent(EventTypeScheduleStatusUpdated, after.ID, AggregateTypeSchedule, after.PrisonNumber, after.PrisonID, context)
	event.SetMetadata(metadata)
	return []*Event{event}
}

func equalReason(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
