package queries

import (
	"context"
	"time"

	"pathway/internal/plan/domain/goal"

	"github.com/google/uuid"
)

// GoalDTO is a data transfer object for goals.
type GoalDTO struct {
	ID           uuid.UUID
	PrisonNumber string
	Title        string
	Area         string
	Notes        string
	TargetDate   *time.Time
	Status       string
	Steps        []StepDTO
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StepDTO is a data transfer object for steps.
type StepDTO struct {
	ID       uuid.UUID
	Title    string
	Status   string
	Sequence int
}

// ListGoalsQuery contains the parameters for listing a prisoner's goals.
type ListGoalsQuery struct {
	PrisonNumber    string
	IncludeArchived bool
}

// ListGoalsHandler handles the ListGoalsQuery.
type ListGoalsHandler struct {
	goalRepo goal.Repository
}

// NewListGoalsHandler creates a new ListGoalsHandler.
func NewListGoalsHandler(goalRepo goal.Repository) *ListGoalsHandler {
	return &ListGoalsHandler{goalRepo: goalRepo}
}

// Handle executes the ListGoalsQuery.
func (h *ListGoalsHandler) Handle(ctx context.Context, query ListGoalsQuery) ([]GoalDTO, error) {
	goals, err := h.goalRepo.FindByPrisonNumber(ctx, query.PrisonNumber)
	if err != nil {
		return nil, err
	}

	dtos := make([]GoalDTO, 0, len(goals))
	for _, g := range goals {
		if g.IsArchived() && !query.IncludeArchived {
			continue
		}
		dtos = append(dtos, toGoalDTO(g))
	}
	return dtos, nil
}

func toGoalDTO(g *goal.Goal) GoalDTO {
	steps := make([]StepDTO, 0, len(g.Steps()))
	for _, s := range g.Steps() {
		steps = append(steps, StepDTO{
			ID:       s.ID(),
			Title:    s.Title(),
			Status:   string(s.Status()),
			Sequence: s.Sequence(),
		})
	}
	return GoalDTO{
		ID:           g.ID(),
		PrisonNumber: g.PrisonNumber(),
		Title:        g.Title(),
		Area:         g.Area(),
		Notes:        g.Notes(),
		TargetDate:   g.TargetDate(),
		Status:       string(g.Status()),
		Steps:        steps,
		CreatedAt:    g.CreatedAt(),
		UpdatedAt:    g.UpdatedAt(),
	}
}
