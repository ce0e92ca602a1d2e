package vault

import (
	"context"
	"errors"
	"time"

	"github.com/travisdw72/onevault-api-sub007/internal/config"
)

// retryPolicy bounds internal retries on write conflicts.
type retryPolicy struct {
	maxAttempts int
	base        time.Duration
	cap         time.Duration
}

func policyFrom(cfg config.RetryConfig) retryPolicy {
	p := retryPolicy{
		maxAttempts: cfg.MaxAttempts,
		base:        time.Duration(cfg.BackoffBaseMs) * time.Millisecond,
		cap:         time.Duration(cfg.BackoffCapMs) * time.Millisecond,
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = 3
	}
	if p.base <= 0 {
		p.base = 25 * time.Millisecond
	}
	return p
}

// backoff returns the delay before the given retry attempt (1-based).
func (p retryPolicy) backoff(attempt int) time.Duration {
	d := p.base
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.cap > 0 && d >= p.cap {
			return p.cap
		}
	}
	if p.cap > 0 && d > p.cap {
		return p.cap
	}
	return d
}

// withRetry runs fn, retrying on ErrConflict up to the policy bound. Other
// errors surface immediately.
func (p retryPolicy) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrConflict) {
			return err
		}
		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-time.After(p.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
