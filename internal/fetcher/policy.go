package fetcher

import (
	"context"
	"time"
)

// Default fetch policy values.
const (
	DefaultTTL         = 10 * time.Minute
	DefaultMaxRetries  = 3
	DefaultBackoffBase = time.Second
)

// Policy controls freshness and retries.
type Policy struct {
	TTL         time.Duration
	MaxRetries  int
	BackoffBase time.Duration
}

// DefaultPolicy returns the standard policy: 10 minute TTL, 3 retries, 1s backoff base.
func DefaultPolicy() Policy {
	return Policy{
		TTL:         DefaultTTL,
		MaxRetries:  DefaultMaxRetries,
		BackoffBase: DefaultBackoffBase,
	}
}

// Backoff returns the wait before retrying after the given zero-based failed attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BackoffBase * time.Duration(attempt+1)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
//
//nolint:gochecknoglobals // Stateless default.
var SystemClock Clock = systemClock{}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
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
