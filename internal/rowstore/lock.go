package rowstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// Lock is the store-wide exclusive lock serializing all trip mutations.
// It is named and global — not per trip — so concurrent writers to
// different trips still block each other. Acquire waits up to the
// implementation's configured bound and returns domain.ErrLockTimeout when
// it expires; the caller must not retry automatically.
type Lock interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context)
}

// MemoryLock is a channel-based Lock for unit tests and single-process use.
type MemoryLock struct {
	sem     chan struct{}
	timeout time.Duration
}

// NewMemoryLock returns a MemoryLock with the given acquisition bound.
func NewMemoryLock(timeout time.Duration) *MemoryLock {
	return &MemoryLock{sem: make(chan struct{}, 1), timeout: timeout}
}

var _ Lock = (*MemoryLock)(nil)

func (l *MemoryLock) Acquire(ctx context.Context) error {
	t := time.NewTimer(l.timeout)
	defer t.Stop()

	select {
	case l.sem <- struct{}{}:
		return nil
	case <-t.C:
		return fmt.Errorf("rowstore.MemoryLock.Acquire: after %s: %w", l.timeout, domain.ErrLockTimeout)
	case <-ctx.Done():
		return fmt.Errorf("rowstore.MemoryLock.Acquire: %w: %w", ctx.Err(), domain.ErrLockTimeout)
	}
}

func (l *MemoryLock) Release(context.Context) {
	select {
	case <-l.sem:
	default: // released without a matching acquire; nothing to do
	}
}
