package sync

import (
	"errors"
	"fmt"

	"github.com/orbitview/spacedata-server/internal/dataset"
)

// ErrSyncInProgress is returned when the global sync lock is held by
// another pass. Callers should retry later.
var ErrSyncInProgress = errors.New("sync already in progress")

// UpstreamError is a failed upstream fetch: exhausted retries or a
// non-retryable status. The wrapped error carries the truncated upstream
// body when one was captured.
type UpstreamError struct {
	Kind dataset.Kind
	Err  error
}

// Error returns the error message.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying fetch error.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
