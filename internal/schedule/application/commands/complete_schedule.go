package commands

import (
	"context"
	"time"

	"pathway/internal/schedule/domain"
	sharedApplication "pathway/internal/shared/application"
	"pathway/internal/shared/infrastructure/lock"
	"pathway/internal/shared/infrastructure/outbox"
	timelineDomain "pathway/internal/timeline/domain"

	"github.com/google/uuid"
)

// CompleteScheduleCommand records that the induction or review took place.
type CompleteScheduleCommand struct {
	ScheduleID  uuid.UUID
	ConductedBy string
	ConductedAt time.Time
	Actor       string
}

// CompleteScheduleHandler handles the CompleteScheduleCommand.
type CompleteScheduleHandler struct {
	scheduleRepo domain.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewCompleteScheduleHandler creates a new CompleteScheduleHandler.
func NewCompleteScheduleHandler(
	scheduleRepo domain.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *CompleteScheduleHandler {
	return &CompleteScheduleHandler{
		scheduleRepo: scheduleRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the complete schedule command.
func (h *CompleteScheduleHandler) Handle(ctx context.Context, cmd CompleteScheduleCommand) (*domain.Schedule, error) {
	return transitionSchedule(ctx, h.scheduleRepo, h.timelineRepo, h.outboxRepo, h.uow, h.locker, h.lockTTL,
		cmd.ScheduleID, func(s *domain.Schedule) (*domain.History, error) {
			return s.Complete(cmd.ConductedBy, cmd.ConductedAt, cmd.Actor)
		}, cmd.Actor)
}
