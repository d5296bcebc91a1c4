// Package lock serializes mutations per subject. Reconciliation and status
// transitions read a before snapshot and write an after snapshot; two writers
// interleaving on the same prison number would race, so the service layer
// takes a lease on the subject for the duration of the mutation.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned when the subject is already locked by another
// mutation in flight.
var ErrLockHeld = errors.New("subject lock already held")

// Locker acquires short leases keyed by subject.
type Locker interface {
	// Acquire takes the lease for key, returning a release function. It fails
	// with ErrLockHeld when another holder has the lease.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(ctx context.Context) error, err error)
}
