package domain

import "context"

// Repository stores and retrieves timeline events. The timeline is
// append-only; events are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, events ...*Event) error
	FindByPrisonNumber(ctx context.Context, prisonNumber string) ([]*Event, error)
}
