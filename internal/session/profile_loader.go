package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/data/repos"
	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

var (
	ErrProfileMissing     = errors.New("profile row missing")
	ErrProfileUnavailable = errors.New("profile unavailable")
)

// Outcome records which tier produced the result.
type Outcome int

const (
	OutcomeFetched Outcome = iota
	OutcomeSelfHealed
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFetched:
		return "fetched"
	case OutcomeSelfHealed:
		return "self_healed"
	default:
		return "failed"
	}
}

type ProfileLoader struct {
	profiles repos.ProfileRepo
	policy   RetryPolicy
	sleep    func(ctx dbctx.Context, d time.Duration) error
	log      *logger.Logger
}

func NewProfileLoader(log *logger.Logger, profiles repos.ProfileRepo, policy RetryPolicy) *ProfileLoader {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.Backoff == nil {
		policy.Backoff = FixedBackoff(0)
	}
	if policy.OnExhaust == nil {
		policy.OnExhaust = profiles.InsertDefault
	}
	return &ProfileLoader{
		profiles: profiles,
		policy:   policy,
		sleep:    func(dbc dbctx.Context, d time.Duration) error { return sleepCtx(dbc.Ctx, d) },
		log:      log.With("service", "ProfileLoader"),
	}
}

// Load fetches the profile for an authenticated identity. Missing rows and
// fetch errors are both treated as failed attempts. A cancelled context
// returns the context error instead of ErrProfileUnavailable.
func (l *ProfileLoader) Load(dbc dbctx.Context, userID uuid.UUID, email string) (*types.Profile, Outcome, error) {
	var lastErr error
	for attempt := 1; attempt <= l.policy.MaxAttempts; attempt++ {
		p, err := l.fetch(dbc, userID)
		if err == nil {
			return p, OutcomeFetched, nil
		}
		lastErr = err
		l.log.Debug("Profile fetch attempt failed", "user_id", userID, "attempt", attempt, "error", err)
		if attempt == l.policy.MaxAttempts {
			break
		}
		if err := l.sleep(dbc, l.policy.Backoff(attempt)); err != nil {
			return nil, OutcomeFailed, fmt.Errorf("profile load aborted: %w", err)
		}
	}

	if err := l.policy.OnExhaust(dbc, userID, email); err != nil {
		l.log.Warn("Profile self-heal insert failed", "user_id", userID, "fetch_error", lastErr, "error", err)
		return nil, OutcomeFailed, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	p, err := l.fetch(dbc, userID)
	if err != nil {
		l.log.Warn("Profile still unavailable after self-heal", "user_id", userID, "error", err)
		return nil, OutcomeFailed, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	l.log.Info("Profile restored with default role", "user_id", userID)
	return p, OutcomeSelfHealed, nil
}

func (l *ProfileLoader) fetch(dbc dbctx.Context, userID uuid.UUID) (*types.Profile, error) {
	p, err := l.profiles.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileMissing
	}
	return p, nil
}
