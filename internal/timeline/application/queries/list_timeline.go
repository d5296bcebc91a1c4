package queries

import (
	"context"
	"time"

	"pathway/internal/timeline/domain"

	"github.com/google/uuid"
)

// TimelineEventDTO is a data transfer object for timeline events.
type TimelineEventDTO struct {
	EventID       uuid.UUID
	AggregateID   uuid.UUID
	AggregateType string
	EventType     string
	PrisonNumber  string
	PrisonID      string
	Context       map[string]string
	CorrelationID uuid.UUID
	Actor         string
	OccurredAt    time.Time
}

// ListTimelineQuery contains the parameters for reading a prisoner's
// timeline, newest first.
type ListTimelineQuery struct {
	PrisonNumber string
	EventType    string
	Limit        int
}

// ListTimelineHandler handles the ListTimelineQuery.
type ListTimelineHandler struct {
	timelineRepo domain.Repository
}

// NewListTimelineHandler creates a new ListTimelineHandler.
func NewListTimelineHandler(timelineRepo domain.Repository) *ListTimelineHandler {
	return &ListTimelineHandler{timelineRepo: timelineRepo}
}

// Handle executes the ListTimelineQuery.
func (h *ListTimelineHandler) Handle(ctx context.Context, query ListTimelineQuery) ([]TimelineEventDTO, error) {
	var filter domain.EventType
	if query.EventType != "" {
		parsed, err := domain.ParseEventType(query.EventType)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}

	events, err := h.timelineRepo.FindByPrisonNumber(ctx, query.PrisonNumber)
	if err != nil {
		return nil, err
	}

	dtos := make([]TimelineEventDTO, 0, len(events))
	for _, event := range events {
		if filter != "" && event.EventType() != filter {
			continue
		}
		metadata := event.Metadata()
		dtos = append(dtos, TimelineEventDTO{
			EventID:       event.EventID(),
			AggregateID:   event.AggregateID(),
			AggregateType: event.AggregateType(),
			EventType:     string(event.EventType()),
			PrisonNumber:  event.PrisonNumber(),
			PrisonID:      event.PrisonID(),
			Context:       event.Context(),
			CorrelationID: metadata.CorrelationID,
			Actor:         metadata.Actor,
			OccurredAt:    event.OccurredAt(),
		})
		if query.Limit > 0 && len(dtos) == query.Limit {
			break
		}
	}
	return dtos, nil
}
