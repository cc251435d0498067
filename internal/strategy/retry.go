package strategy

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Retry re-runs a base strategy until it succeeds or attempts run out.
type Retry[T any] struct {
	base       Strategy[T]
	maxRetries int
	newBackOff func() backoff.BackOff
}

// RetryOption configures a Retry.
type RetryOption func(*retryOptions)

type retryOptions struct {
	newBackOff func() backoff.BackOff
}

// WithBackOff replaces the constant delay with a policy created per Process
// call. A policy returning backoff.Stop ends the retries early.
func WithBackOff(newBackOff func() backoff.BackOff) RetryOption {
	return func(o *retryOptions) { o.newBackOff = newBackOff }
}

// WithExponentialBackOff waits initial, then grows the delay by the default
// multiplier up to maxDelay.
func WithExponentialBackOff(initial, maxDelay time.Duration) RetryOption {
	return WithBackOff(func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initial
		if maxDelay > 0 {
			b.MaxInterval = maxDelay
		}
		b.Reset()
		return b
	})
}

// NewRetry wraps base so that Process makes up to maxRetries+1 attempts,
// waiting delay between attempts.
func NewRetry[T any](base Strategy[T], maxRetries int, delay time.Duration, opts ...RetryOption) *Retry[T] {
	if maxRetries < 0 {
		maxRetries = 0
	}

	o := &retryOptions{
		newBackOff: func() backoff.BackOff { return backoff.NewConstantBackOff(delay) },
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Retry[T]{
		base:       base,
		maxRetries: maxRetries,
		newBackOff: o.newBackOff,
	}
}

// CanProcess delegates to the base strategy.
func (r *Retry[T]) CanProcess(item T) bool {
	return r.base.CanProcess(item)
}

// Process returns the first successful result or the last error.
func (r *Retry[T]) Process(ctx context.Context, item T) (T, error) {
	b := r.newBackOff()

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		out, err := r.base.Process(ctx, item)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if attempt == r.maxRetries {
			break
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			var zero T
			return zero, err
		}
	}

	var zero T
	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
