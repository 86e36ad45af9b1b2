package rowstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"github.com/mwhitfield/tripatlas/backend/internal/domain"
)

// errLockHeld marks a poll attempt that found the lock taken, so Acquire
// can tell "waited out the bound" apart from a real database failure.
var errLockHeld = errors.New("advisory lock held elsewhere")

// pollInterval is how often AdvisoryLock re-tries pg_try_advisory_lock
// while waiting for the bound to expire.
const pollInterval = 250 * time.Millisecond

// AdvisoryLock implements Lock on a Postgres session advisory lock.
// Advisory locks are bound to the session that took them, so Acquire checks
// out a dedicated connection from the pool and holds it until Release.
type AdvisoryLock struct {
	pool    *pgxpool.Pool
	name    string
	timeout time.Duration

	mu   sync.Mutex
	conn *pgxpool.Conn // non-nil while held
}

// NewAdvisoryLock returns an AdvisoryLock for the given lock name.
// All processes sharing the database and name contend on the same lock.
func NewAdvisoryLock(pool *pgxpool.Pool, name string, timeout time.Duration) *AdvisoryLock {
	return &AdvisoryLock{pool: pool, name: name, timeout: timeout}
}

var _ Lock = (*AdvisoryLock)(nil)

// Acquire polls pg_try_advisory_lock with a constant backoff until it
// succeeds or the bound expires. The non-blocking try variant is used so
// the wait is enforced here rather than by a server-side statement timeout.
func (l *AdvisoryLock) Acquire(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("rowstore.AdvisoryLock.Acquire: connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	b := retry.WithMaxDuration(l.timeout, retry.NewConstant(pollInterval))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		var got bool
		if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock(hashtext($1))`, l.name).Scan(&got); err != nil {
			return err // query failure is not retryable
		}
		if !got {
			return retry.RetryableError(errLockHeld)
		}
		return nil
	})
	if err != nil {
		conn.Release()
		// Only an exhausted wait is a lock timeout. A query or connection
		// failure inside the loop surfaces as-is so a database outage does
		// not masquerade as contention.
		if errors.Is(err, errLockHeld) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("rowstore.AdvisoryLock.Acquire: after %s: %w", l.timeout, domain.ErrLockTimeout)
		}
		return fmt.Errorf("rowstore.AdvisoryLock.Acquire: %w", err)
	}

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
	return nil
}

// Release unlocks and returns the held connection to the pool. Safe to call
// when the lock is not held.
func (l *AdvisoryLock) Release(ctx context.Context) {
	l.mu.Lock()
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()

	if conn == nil {
		return
	}

	// The caller's context may already be canceled (client disconnect after
	// the writes landed); the unlock must still run or the session keeps the
	// store-wide lock.
	ctx = context.WithoutCancel(ctx)

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtext($1))`, l.name); err != nil {
		// The session may still hold the lock. Destroy the connection so the
		// server drops the lock with the session, rather than returning a
		// locked session to the pool.
		_ = conn.Hijack().Close(ctx)
		return
	}
	conn.Release()
}
