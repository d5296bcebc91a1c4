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

// ReactivateGoalCommand returns an archived goal to the active plan.
type ReactivateGoalCommand struct {
	GoalID uuid.UUID
	Actor  string
}

// ReactivateGoalHandler handles the ReactivateGoalCommand.
type ReactivateGoalHandler struct {
	goalRepo     goal.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewReactivateGoalHandler creates a new ReactivateGoalHandler.
func NewReactivateGoalHandler(
	goalRepo goal.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *ReactivateGoalHandler {
	return &ReactivateGoalHandler{
		goalRepo:     goalRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the reactivate goal command.
func (h *ReactivateGoalHandler) Handle(ctx context.Context, cmd ReactivateGoalCommand) (*goal.Goal, error) {
	return transitionGoal(ctx, h.goalRepo, h.timelineRepo, h.outboxRepo, h.uow, h.locker, h.lockTTL,
		cmd.GoalID, cmd.Actor, func(g *goal.Goal) error { return g.Reactivate() })
}
