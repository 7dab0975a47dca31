package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/orbitview/spacedata-server/internal/store"
)

const (
	// lockKey is the meta-table key holding the global sync lock token.
	lockKey = "sync_lock"

	// LockTimeout is the age past which a lock token is considered
	// abandoned and may be reclaimed.
	LockTimeout = 5 * time.Minute

	lockTimeFormat = "2006-01-02T15:04:05.000Z"
)

// Lock is the persisted global mutual-exclusion token serializing sync
// passes across all entity kinds. Acquisition is a single-statement
// insert-if-absent, so two concurrent callers can never both win.
type Lock struct {
	store store.Store
	now   func() time.Time
}

// NewLock creates a lock over the given store.
func NewLock(st store.Store) *Lock {
	return &Lock{store: st, now: time.Now}
}

// Acquire attempts to take the lock, reporting whether it was taken.
// An existing token older than LockTimeout is treated as abandoned:
// it is cleared and acquisition proceeds.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	now := l.now().UTC()
	token := now.Format(lockTimeFormat)

	ok, err := l.store.PutMetaIfAbsent(ctx, lockKey, token)
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if ok {
		return true, nil
	}

	stale, err := l.isStale(ctx, now)
	if err != nil {
		return false, err
	}
	if !stale {
		return false, nil
	}

	if err := l.store.DeleteMeta(ctx, lockKey); err != nil {
		return false, fmt.Errorf("failed to clear stale sync lock: %w", err)
	}
	ok, err = l.store.PutMetaIfAbsent(ctx, lockKey, token)
	if err != nil {
		return false, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	return ok, nil
}

// Release deletes the lock token. Safe to call when no lock is held.
func (l *Lock) Release(ctx context.Context) error {
	if err := l.store.DeleteMeta(ctx, lockKey); err != nil {
		return fmt.Errorf("failed to release sync lock: %w", err)
	}
	return nil
}

// IsLocked reports whether a live lock exists. An expired token is
// opportunistically cleared so status queries agree with acquisition.
func (l *Lock) IsLocked(ctx context.Context) (bool, error) {
	stale, err := l.isStale(ctx, l.now().UTC())
	if err != nil {
		return false, err
	}
	if stale {
		if err := l.store.DeleteMeta(ctx, lockKey); err != nil {
			return false, fmt.Errorf("failed to clear stale sync lock: %w", err)
		}
		return false, nil
	}

	token, err := l.store.GetMeta(ctx, lockKey)
	if err != nil {
		return false, fmt.Errorf("failed to read sync lock: %w", err)
	}
	return token != "", nil
}

// isStale reports whether a token exists and has exceeded LockTimeout.
// An unparseable token counts as stale so a corrupt value cannot wedge
// syncing forever.
func (l *Lock) isStale(ctx context.Context, now time.Time) (bool, error) {
	token, err := l.store.GetMeta(ctx, lockKey)
	if err != nil {
		return false, fmt.Errorf("failed to read sync lock: %w", err)
	}
	if token == "" {
		return false, nil
	}

	lockedAt, err := time.Parse(lockTimeFormat, token)
	if err != nil {
		return true, nil
	}
	return now.Sub(lockedAt) > LockTimeout, nil
}
