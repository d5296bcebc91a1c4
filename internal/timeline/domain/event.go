package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "pathway/internal/shared/domain"
)

// Aggregate types that appear on the timeline.
const (
	AggregateTypeGoal     = "goal"
	AggregateTypeSchedule = "schedule"
)

// EventType tags what kind of change a timeline event records.
type EventType string

const (
	EventTypeGoalCreated   EventType = "GOAL_CREATED"
	EventTypeGoalUpdated   EventType = "GOAL_UPDATED"
	EventTypeGoalStarted   EventType = "GOAL_STARTED"
	EventTypeGoalCompleted EventType = "GOAL_COMPLETED"
	EventTypeGoalArchived  EventType = "GOAL_ARCHIVED"

	EventTypeStepNotStarted EventType = "STEP_NOT_STARTED"
	EventTypeStepStarted    EventType = "STEP_STARTED"
	EventTypeStepCompleted  EventType = "STEP_COMPLETED"

	EventTypeScheduleStatusUpdated EventType = "SCHEDULE_STATUS_UPDATED"
)

var routingKeys = map[EventType]string{
	EventTypeGoalCreated:           "timeline.goal.created",
	EventTypeGoalUpdated:           "timeline.goal.updated",
	EventTypeGoalStarted:           "timeline.goal.started",
	EventTypeGoalCompleted:         "timeline.goal.completed",
	EventTypeGoalArchived:          "timeline.goal.archived",
	EventTypeStepNotStarted:        "timeline.step.not_started",
	EventTypeStepStarted:           "timeline.step.started",
	EventTypeStepCompleted:         "timeline.step.completed",
	EventTypeScheduleStatusUpdated: "timeline.schedule.status_updated",
}

// ParseEventType converts a stored string into an EventType.
func ParseEventType(s string) (EventType, error) {
	if _, ok := routingKeys[EventType(s)]; !ok {
		return "", errors.New("unknown timeline event type: " + s)
	}
	return EventType(s), nil
}

// Event is a derived, immutable audit record of one noticed change. Events
// are produced only by the resolver, appended, and never mutated.
type Event struct {
	sharedDomain.BaseEvent
	eventType    EventType
	prisonNumber string
	prisonID     string
	context      map[string]string
}

// NewEvent creates a timeline event for one noticed change.
func NewEvent(eventType EventType, aggregateID uuid.UUID, aggregateType, prisonNumber, prisonID string, context map[string]string) *Event {
	return &Event{
		BaseEvent:    sharedDomain.NewBaseEvent(aggregateID, aggregateType, routingKeys[eventType]),
		eventType:    eventType,
		prisonNumber: prisonNumber,
		prisonID:     prisonID,
		context:      context,
	}
}

// RehydrateEvent recreates a timeline event from persisted state.
func RehydrateEvent(
	eventID, aggregateID uuid.UUID,
	aggregateType string,
	eventType EventType,
	prisonNumber, prisonID string,
	context map[string]string,
	occurredAt time.Time,
	metadata sharedDomain.EventMetadata,
) *Event {
	return &Event{
		BaseEvent:    sharedDomain.RehydrateBaseEvent(eventID, aggregateID, aggregateType, routingKeys[eventType], occurredAt, metadata),
		eventType:    eventType,
		prisonNumber: prisonNumber,
		prisonID:     prisonID,
		context:      context,
	}
}

func (e *Event) EventType() EventType { return e.eventType }
func (e *Event) PrisonNumber() string { return e.prisonNumber }
func (e *Event) PrisonID() string     { return e.prisonID }

// Context returns the event's contextual key/value pairs. The returned map is
// a copy; the event itself stays immutable.
func (e *Event) Context() map[string]string {
	if e.context == nil {
		return nil
	}
	out := make(map[string]string, len(e.context))
	for k, v := range e.context {
		out[k] = v
	}
	return out
}

type eventJSON struct {
	EventID       uuid.UUID         `json:"event_id"`
	AggregateID   uuid.UUID         `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	EventType     EventType         `json:"event_type"`
	PrisonNumber  string            `json:"prison_number"`
	PrisonID      string            `json:"prison_id,omitempty"`
	Context       map[string]string `json:"context,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Actor         string            `json:"actor"`
	CorrelationID uuid.UUID         `json:"correlation_id"`
}

// MarshalJSON renders the event in the wire shape consumers receive.
func (e *Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		EventID:       e.EventID(),
		AggregateID:   e.AggregateID(),
		AggregateType: e.AggregateType(),
		EventType:     e.eventType,
		PrisonNumber:  e.prisonNumber,
		PrisonID:      e.prisonID,
		Context:       e.context,
		OccurredAt:    e.OccurredAt(),
		Actor:         e.Metadata().Actor,
		CorrelationID: e.Metadata().CorrelationID,
	})
}
