package queries

import (
	"context"

	"pathway/internal/plan/domain/goal"

	"github.com/google/uuid"
)

// GetGoalQuery contains the parameters for getting a single goal.
type GetGoalQuery struct {
	GoalID uuid.UUID
}

// GetGoalHandler handles the GetGoalQuery.
type GetGoalHandler struct {
	goalRepo goal.Repository
}

// NewGetGoalHandler creates a new GetGoalHandler.
func NewGetGoalHandler(goalRepo goal.Repository) *GetGoalHandler {
	return &GetGoalHandler{goalRepo: goalRepo}
}

// Handle executes the GetGoalQuery.
func (h *GetGoalHandler) Handle(ctx context.Context, query GetGoalQuery) (*GoalDTO, error) {
	g, err := h.goalRepo.FindByID(ctx, query.GoalID)
	if err != nil {
		return nil, err
	}
	dto := toGoalDTO(g)
	return &dto, nil
}
