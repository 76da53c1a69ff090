package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/platform/dbctx"
)

// BackoffFunc returns the wait before attempt n+1, n starting at 1.
type BackoffFunc func(attempt int) time.Duration

// ExhaustFunc runs once after every fetch attempt failed.
type ExhaustFunc func(dbc dbctx.Context, userID uuid.UUID, email string) error

// RetryPolicy governs profile loading. The three tiers are: up to MaxAttempts
// fetches spaced by Backoff, one OnExhaust repair followed by a single
// re-fetch, then giving up.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     BackoffFunc
	OnExhaust   ExhaustFunc
}

func FixedBackoff(d time.Duration) BackoffFunc {
	return func(int) time.Duration { return d }
}

// DefaultRetryPolicy makes 3 attempts one second apart. OnExhaust is left
// for the loader to fill with the default-profile insert.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: FixedBackoff(time.Second)}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
