// CLAUDE:SUMMARY Bounded sequential retry with linear backoff and a single exhaustion hook, used around each per-wallet metric fetch.
// Package retry runs a fallible operation with a bounded number of attempts.
//
// Backoff is linear in the attempt index: after attempt k fails, the
// controller waits Backoff*k before attempt k+1. When the final attempt
// fails the exhaustion hook runs once and the last error is returned.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Policy bounds a retry loop. It is fixed at startup.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Task identifies what is being retried, for logs.
type Task struct {
	Wallet string
	Metric string
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the unwrapped error
// at once without calling the exhaustion hook.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Controller applies a Policy.
type Controller struct {
	policy Policy
	sleep  Sleeper
	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithSleeper replaces the real sleep, e.g. to record backoff in tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Controller) { c.sleep = s }
}

// WithLogger sets the logger used for attempt failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a Controller. MaxAttempts below 1 is treated as 1 and a
// negative Backoff as 0.
func New(p Policy, opts ...Option) *Controller {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.Backoff < 0 {
		p.Backoff = 0
	}
	c := &Controller{policy: p, sleep: sleepCtx, logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Policy returns the controller's policy.
func (c *Controller) Policy() Policy { return c.policy }

// Delay is the wait after attempt k fails.
func (c *Controller) Delay(k int) time.Duration {
	return c.policy.Backoff * time.Duration(k)
}

// Do runs op until it succeeds or the policy is exhausted. onExhausted, if
// non-nil, is called exactly once with the last error before it is returned.
// op receives the 1-based attempt index. A Permanent error or a done ctx
// ends the loop early without the hook.
func Do[T any](ctx context.Context, c *Controller, task Task, op func(ctx context.Context, attempt int) (T, error), onExhausted func(ctx context.Context, err error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		// Don't retry if context is done.
		if ctx.Err() != nil {
			return zero, lastErr
		}

		if attempt == c.policy.MaxAttempts {
			break
		}
		wait := c.Delay(attempt)
		c.logger.WarnContext(ctx, "retry: attempt failed",
			"wallet", task.Wallet,
			"metric", task.Metric,
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err)
		if err := c.sleep(ctx, wait); err != nil {
			return zero, fmt.Errorf("retry: %s: interrupted after attempt %d: %w", task.Metric, attempt, lastErr)
		}
	}

	c.logger.ErrorContext(ctx, "retry: attempts exhausted",
		"wallet", task.Wallet,
		"metric", task.Metric,
		"attempts", c.policy.MaxAttempts,
		"error", lastErr)
	if onExhausted != nil {
		onExhausted(ctx, lastErr)
	}
	return zero, lastErr
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
