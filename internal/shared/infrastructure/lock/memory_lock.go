package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implements Locker in process memory. Used in local mode and
// tests; it serializes subjects within a single instance only.
type MemoryLocker struct {
	mu     sync.Mutex
	leases map[string]time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{leases: make(map[string]time.Time)}
}

// Acquire takes the lease for key, honoring expiry of stale leases.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(ctx context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if expiry, held := l.leases[key]; held && time.Now().Before(expiry) {
		return nil, ErrLockHeld
	}
	l.leases[key] = time.Now().Add(ttl)

	release := func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.leases, key)
		return nil
	}
	return release, nil
}
