package application

import "context"

// UnitOfWork scopes one case-management mutation to a single transaction:
// the aggregate write, its version history, the derived timeline rows and
// the staged outbox messages commit or roll back as one.
type UnitOfWork interface {
	Begin(ctx context.Context) (context.Context, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWorkFunc runs inside an open transaction. The returned context from
// Begin carries the transaction handle the repositories pick up.
type UnitOfWorkFunc func(ctx context.Context) error

// WithUnitOfWork begins a transaction, runs fn and commits, rolling back
// when fn returns an error.
func WithUnitOfWork(ctx context.Context, uow UnitOfWork, fn UnitOfWorkFunc) error {
	txCtx, err := uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		_ = uow.Rollback(txCtx)
		return err
	}

	return uow.Commit(txCtx)
}
