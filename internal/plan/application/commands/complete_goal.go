package commands

import (
	"context"
	"time"

	"pathway/internal/plan/domain/goal"
	sharedApplication "pathway/internal/shared/application"
	"pathway/internal/shared/infrastructure/lock"
	"pathway/internal/shared/infrastructure/outbox"
	timelineDomain "pathway/internal/timeline/domain"

	"github.com/google/uuid"
)

// CompleteGoalCommand marks a goal as completed.
type CompleteGoalCommand struct {
	GoalID uuid.UUID
	Actor  string
}

// CompleteGoalHandler handles the CompleteGoalCommand.
type CompleteGoalHandler struct {
	goalRepo     goal.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewCompleteGoalHandler creates a new CompleteGoalHandler.
func NewCompleteGoalHandler(
	goalRepo goal.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *CompleteGoalHandler {
	return &CompleteGoalHandler{
		goalRepo:     goalRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the complete goal command.
func (h *CompleteGoalHandler) Handle(ctx context.Context, cmd CompleteGoalCommand) (*goal.Goal, error) {
	return transitionGoal(ctx, h.goalRepo, h.timelineRepo, h.outboxRepo, h.uow, h.locker, h.lockTTL,
		cmd.GoalID, cmd.Actor, func(g *goal.Goal) error { return g.Complete() })
}

// transitionGoal runs a status mutation on one goal under the per-prisoner
// lease and records the resulting timeline events.
func transitionGoal(
	ctx context.Context,
	goalRepo goal.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
	goalID uuid.UUID,
	actor string,
	mutate func(g *goal.Goal) error,
) (*goal.Goal, error) {
	g, err := goalRepo.FindByID(ctx, goalID)
	if err != nil {
		return nil, err
	}

	release, err := locker.Acquire(ctx, g.PrisonNumber(), lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release(ctx) }()

	err = sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		g, err = goalRepo.FindByID(txCtx, goalID)
		if err != nil {
			return err
		}

		before := g.Snapshot()
		if err := mutate(g); err != nil {
			return err
		}

		after := g.Snapshot()
		metadata := sharedApplication.NewEventMetadata(actor)
		events := timelineDomain.ResolveGoal(before, after, metadata)
		if len(events) == 0 && before.Equal(after) {
			return nil
		}

		if err := goalRepo.Save(txCtx, g); err != nil {
			return err
		}
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
	return g, nil
}
