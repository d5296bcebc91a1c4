package application_test

import (
	"testing"

	"pathway/internal/shared/application"
	"pathway/internal/shared/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubEvent struct {
	domain.BaseEvent
}

func TestNewEventMetadata(t *testing.T) {
	metadata := application.NewEventMetadata("jclark")

	assert.NotEqual(t, uuid.Nil, metadata.CorrelationID)
	assert.NotEqual(t, uuid.Nil, metadata.CausationID)
	assert.Equal(t, "jclark", metadata.Actor)
}

func TestApplyEventMetadata(t *testing.T) {
	first := &stubEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Goal", "timeline.goal.updated")}
	second := &stubEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Goal", "timeline.goal.completed")}
	metadata := application.NewEventMetadata("jclark")

	application.ApplyEventMetadata([]domain.DomainEvent{first, second}, metadata)

	assert.Equal(t, metadata, first.Metadata())
	assert.Equal(t, metadata, second.Metadata())
	assert.Equal(t, first.Metadata().CorrelationID, second.Metadata().CorrelationID)
}
