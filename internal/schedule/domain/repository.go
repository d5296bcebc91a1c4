package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for schedules and their
// history. History rows are append-only.
type Repository interface {
	// Save persists the schedule. Creates or updates as needed.
	Save(ctx context.Context, s *Schedule) error

	// FindByID retrieves a schedule by its ID, returning ErrScheduleNotFound
	// when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*Schedule, error)

	// FindActive retrieves the prisoner's single in-scope schedule of the
	// given type, returning ErrScheduleNotFound when none is in scope.
	FindActive(ctx context.Context, prisonNumber string, scheduleType Type) (*Schedule, error)

	// AppendHistory stores an immutable history snapshot.
	AppendHistory(ctx context.Context, h *History) error

	// HistoryByScheduleID retrieves all history rows for a schedule, oldest
	// version first.
	HistoryByScheduleID(ctx context.Context, scheduleID uuid.UUID) ([]*History, error)
}
