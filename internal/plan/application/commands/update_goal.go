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

// UpdateGoalCommand updates a goal's content and reconciles its steps.
// Nil fields mean "no change"; a nil Steps slice leaves the steps alone.
type UpdateGoalCommand struct {
	GoalID     uuid.UUID
	Title      *string
	Area       *string
	Notes      *string
	TargetDate *time.Time
	ClearDate  bool
	Steps      []StepInput
	Actor      string
}

// UpdateGoalHandler handles the UpdateGoalCommand.
type UpdateGoalHandler struct {
	goalRepo     goal.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewUpdateGoalHandler creates a new UpdateGoalHandler.
func NewUpdateGoalHandler(
	goalRepo goal.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *UpdateGoalHandler {
	return &UpdateGoalHandler{
		goalRepo:     goalRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the update goal command. The whole read-modify-write runs
// under a per-prisoner lease so two officers editing the same plan cannot
// interleave.
func (h *UpdateGoalHandler) Handle(ctx context.Context, cmd UpdateGoalCommand) (*goal.Goal, error) {
	g, err := h.goalRepo.FindByID(ctx, cmd.GoalID)
	if err != nil {
		return nil, err
	}

	release, err := h.locker.Acquire(ctx, g.PrisonNumber(), h.lockTTL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = release(ctx) }()

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		g, err = h.goalRepo.FindByID(txCtx, cmd.GoalID)
		if err != nil {
			return err
		}

		before := g.Snapshot()

		if cmd.Title != nil {
			if err := g.SetTitle(*cmd.Title); err != nil {
				return err
			}
		}
		if cmd.Area != nil {
			if err := g.SetArea(*cmd.Area); err != nil {
				return err
			}
		}
		if cmd.Notes != nil {
			if err := g.SetNotes(*cmd.Notes); err != nil {
				return err
			}
		}
		if cmd.TargetDate != nil || cmd.ClearDate {
			if err := g.SetTargetDate(cmd.TargetDate); err != nil {
				return err
			}
		}
		if cmd.Steps != nil {
			steps, err := toStepInputs(cmd.Steps)
			if err != nil {
				return err
			}
			if _, err := g.UpdateSteps(steps); err != nil {
				return err
			}
		}

		after := g.Snapshot()
		metadata := sharedApplication.NewEventMetadata(cmd.Actor)
		events := timelineDomain.ResolveGoal(before, after, metadata)

		// Some edits change stored state without deriving an event, for
		// example a step reorder or a step retitle. The save is gated on
		// the snapshot diff; only the timeline and outbox are gated on
		// events.
		if len(events) == 0 && before.Equal(after) {
			return nil
		}

		if err := h.goalRepo.Save(txCtx, g); err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		if err := h.timelineRepo.Append(txCtx, events...); err != nil {
			return err
		}
		return stageOutbox(txCtx, h.outboxRepo, events...)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}
