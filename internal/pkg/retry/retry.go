package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// Policy bounds retries of transient failures.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// Retryable decides whether err is worth another attempt.
	// Defaults to errors.Is(err, ErrUnavailable).
	Retryable func(error) bool
}

// Default is used when no policy is configured.
var Default = Policy{Attempts: 3, BaseDelay: 50 * time.Millisecond, MaxDelay: time.Second}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts are
// exhausted or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil || !retryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}
		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}

// Value is Do for functions returning a result.
func Value[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// IsTransient reports whether err is a transient storage failure.
func IsTransient(err error) bool {
	return errors.Is(err, domainErrors.ErrUnavailable)
}

func (p Policy) backoff(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		return 0
	}
	exp := base * time.Duration(1<<attempt)
	if p.MaxDelay > 0 && exp > p.MaxDelay {
		exp = p.MaxDelay
	}
	jitter := time.Duration(0)
	if half := int64(exp / 2); half > 0 {
		jitter = time.Duration(rand.Int64N(half))
	}
	return exp + jitter
}
