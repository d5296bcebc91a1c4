package commands

import (
	"context"
	"time"

	"pathway/internal/plan/domain/goal"
	sharedApplication "pathway/internal/shared/application"
	"pathway/internal/shared/infrastructure/outbox"
	timelineDomain "pathway/internal/timeline/domain"

	"github.com/google/uuid"
)

// CreateGoalCommand adds a goal with its initial steps to a prisoner's plan.
type CreateGoalCommand struct {
	PrisonNumber string
	Title        string
	Area         string
	TargetDate   *time.Time
	Steps        []StepInput
	Actor        string
}

// StepInput mirrors the desired state of one step as supplied by the caller.
type StepInput struct {
	ID       *uuid.UUID
	Title    string
	Status   string
	Position int
}

// CreateGoalHandler handles the CreateGoalCommand.
type CreateGoalHandler struct {
	goalRepo     goal.Repository
	timelineRepo timelineDomain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
}

// NewCreateGoalHandler creates a new CreateGoalHandler.
func NewCreateGoalHandler(
	goalRepo goal.Repository,
	timelineRepo timelineDomain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
) *CreateGoalHandler {
	return &CreateGoalHandler{
		goalRepo:     goalRepo,
		timelineRepo: timelineRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
	}
}

// Handle executes the create goal command.
func (h *CreateGoalHandler) Handle(ctx context.Context, cmd CreateGoalCommand) (*goal.Goal, error) {
	steps, err := toStepInputs(cmd.Steps)
	if err != nil {
		return nil, err
	}

	g, err := goal.NewGoal(cmd.PrisonNumber, cmd.Title, cmd.Area, cmd.TargetDate, steps)
	if err != nil {
		return nil, err
	}

	metadata := sharedApplication.NewEventMetadata(cmd.Actor)
	created := timelineDomain.GoalCreated(g.Snapshot(), metadata)

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.goalRepo.Save(txCtx, g); err != nil {
			return err
		}
		if err := h.timelineRepo.Append(txCtx, created); err != nil {
			return err
		}
		return stageOutbox(txCtx, h.outboxRepo, created)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func toStepInputs(inputs []StepInput) ([]goal.StepInput, error) {
	steps := make([]goal.StepInput, 0, len(inputs))
	for _, in := range inputs {
		status := goal.StepStatusNotStarted
		if in.Status != "" {
			parsed, err := goal.ParseStepStatus(in.Status)
			if err != nil {
				return nil, err
			}
			status = parsed
		}
		steps = append(steps, goal.StepInput{
			ID:       in.ID,
			Title:    in.Title,
			Status:   status,
			Position: in.Position,
		})
	}
	return steps, nil
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
	if len(msgs) == 0 {
		return nil
	}
	return repo.SaveBatch(ctx, msgs)
}
