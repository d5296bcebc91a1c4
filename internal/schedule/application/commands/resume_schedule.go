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

// ResumeScheduleCommand lifts an exemption and reschedules. The deadline
// window is recomputed from the schedule's rule against ReferenceDate.
type ResumeScheduleCommand struct {
	ScheduleID    uuid.UUID
	ReferenceDate time.Time
	Actor         string
}

// ResumeScheduleHandler handles the ResumeScheduleCommand.
type ResumeScheduleHandler struct {
	scheduleRepo domain.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewResumeScheduleHandler creates a new ResumeScheduleHandler.
func NewResumeScheduleHandler(
	scheduleRepo domain.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *ResumeScheduleHandler {
	return &ResumeScheduleHandler{
		scheduleRepo: scheduleRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the resume schedule command.
func (h *ResumeScheduleHandler) Handle(ctx context.Context, cmd ResumeScheduleCommand) (*domain.Schedule, error) {
	return transitionSchedule(ctx, h.scheduleRepo, h.timelineRepo, h.outboxRepo, h.uow, h.locker, h.lockTTL,
		cmd.ScheduleID, func(s *domain.Schedule) (*domain.History, error) {
			return s.Transition(domain.StatusScheduled, nil, cmd.ReferenceDate, cmd.Actor)
		}, cmd.Actor)
}
