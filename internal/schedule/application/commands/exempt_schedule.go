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

// ExemptScheduleCommand moves a schedule into one of the exemption statuses.
// Reason is mandatory for the uncategorised "other" exemptions.
type ExemptScheduleCommand struct {
	ScheduleID uuid.UUID
	Status     string
	Reason     *string
	Actor      string
}

// ExemptScheduleHandler handles the ExemptScheduleCommand.
type ExemptScheduleHandler struct {
	scheduleRepo domain.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewExemptScheduleHandler creates a new ExemptScheduleHandler.
func NewExemptScheduleHandler(
	scheduleRepo domain.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *ExemptScheduleHandler {
	return &ExemptScheduleHandler{
		scheduleRepo: scheduleRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the exempt schedule command.
func (h *ExemptScheduleHandler) Handle(ctx context.Context, cmd ExemptScheduleCommand) (*domain.Schedule, error) {
	target, err := domain.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	return transitionSchedule(ctx, h.scheduleRepo, h.timelineRepo, h.outboxRepo, h.uow, h.locker, h.lockTTL,
		cmd.ScheduleID, func(s *domain.Schedule) (*domain.History, error) {
			return s.Transition(target, cmd.Reason, time.Now().UTC(), cmd.Actor)
		}, cmd.Actor)
}

// transitionSchedule runs a status mutation on one schedule under the
// per-prisoner lease, appending the history snapshot and any timeline events
// in the same transaction.
func transitionSchedule(
	ctx context.Context,
	scheduleRepo domain.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
	scheduleID uuid.UUID,
	mutate func(s *domain.Schedule) (*domain.History, error),
	actor string,
) (*domain.Schedule, error) {
	s, err := scheduleRepo.FindByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	release, err := locker.Acquire(ctx, s.PrisonNumber(), lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release(ctx) }()

	err = sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		s, err = scheduleRepo.FindByID(txCtx, scheduleID)
		if err != nil {
			return err
		}

		before := s.Snapshot()
		history, err := mutate(s)
		if err != nil {
			return err
		}

		if err := scheduleRepo.Save(txCtx, s); err != nil {
			return err
		}
		if err := scheduleRepo.AppendHistory(txCtx, history); err != nil {
			return err
		}

		metadata := sharedApplication.NewEventMetadata(actor)
		events := timelineDomain.ResolveSchedule(before, s.Snapshot(), metadata)
		if len(events) == 0 {
			return nil
		}
		if err := timelineRepo.Append(txCtx, events...); err != nil {
			return err
		}
		return stageOutbox(txCtx, outboxRepo, events...)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func stageOutbox(ctx context.Context, repo outbox.Repository, events ...*timelineDomain.Event) error {
	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return repo.SaveBatch(ctx, msgs)
}
