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

// ArchiveGoalCommand removes a goal from the active plan without deleting it.
type ArchiveGoalCommand struct {
	GoalID uuid.UUID
	Actor  string
}

// ArchiveGoalHandler handles the ArchiveGoalCommand.
type ArchiveGoalHandler struct {
	goalRepo     goal.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	locker       lock.Locker
	lockTTL      time.Duration
}

// NewArchiveGoalHandler creates a new ArchiveGoalHandler.
func NewArchiveGoalHandler(
	goalRepo goal.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	locker lock.Locker,
	lockTTL time.Duration,
) *ArchiveGoalHandler {
	return &ArchiveGoalHandler{
		goalRepo:     goalRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		locker:       locker,
		lockTTL:      lockTTL,
	}
}

// Handle executes the archive goal command. Archiving an already archived
// goal is a no-op and records nothing.
func (h *ArchiveGoalHandler) Handle(ctx context.Context, cmd ArchiveGoalCommand) (*goal.Goal, error) {
	return transitionGoal(ctx, h.goalRepo, h.timelineRepo, h.outboxRepo, h.uow, h.locker, h.lockTTL,
		cmd.GoalID, cmd.Actor, func(g *goal.Goal) error { return g.Archive() })
}
