package goal

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for goals.
type Repository interface {
	// Save persists the goal and its steps. Creates or updates as needed.
	Save(ctx context.Context, g *Goal) error

	// FindByID retrieves a goal by its ID, returning ErrGoalNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Goal, error)

	// FindByPrisonNumber retrieves all goals on a prisoner's plan, ordered by
	// creation time.
	FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*Goal, error)
}
