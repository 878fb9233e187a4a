package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/pkg/errs"
)

const (
	// maxConflictAttempts bounds how many times a mutating handler replays
	// its read-modify-write cycle after a retryable failure. The final
	// failure is surfaced to the caller.
	maxConflictAttempts = 3

	conflictBackoffStep = 50 * time.Millisecond
)

// withConflictRetry runs op, replaying it with linear backoff after a
// retryable failure: a lost optimistic-concurrency race
// (errs.ErrVersionIsInvalid) or a transient storage fault
// (errs.ErrPersistenceFailed). Deterministic errors (validation, illegal
// transitions, not found) pass through on the first occurrence. Each
// invocation of op must perform a fresh read so a replay observes the
// winning writer's state.
func withConflictRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		err = op()
		if err == nil || !isRetryable(err) {
			return err
		}
		if attempt == maxConflictAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * conflictBackoffStep):
		}
	}
	return err
}

func isRetryable(err error) bool {
	return errors.Is(err, errs.ErrVersionIsInvalid) || errors.Is(err, errs.ErrPersistenceFailed)
}
