package retry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// Operation is one attempt. attempt starts at 1.
type Operation func(ctx context.Context, attempt int) error

// RetryFunc is called before each backoff wait with the failed attempt,
// the error it returned and the delay about to be slept.
type RetryFunc func(attempt int, err error, delay time.Duration)

// Retrier executes operations under a Policy.
type Retrier struct {
	policy  Policy
	clock   clockwork.Clock
	logger  *slog.Logger
	onRetry RetryFunc
}

// Option customizes a Retrier.
type Option func(*Retrier)

// WithClock sets the clock used for backoff waits.
func WithClock(c clockwork.Clock) Option {
	return func(r *Retrier) { r.clock = c }
}

// WithLogger sets the logger that records each retry.
func WithLogger(l *slog.Logger) Option {
	return func(r *Retrier) { r.logger = l }
}

// WithOnRetry registers a callback invoked before each backoff wait.
func WithOnRetry(fn RetryFunc) Option {
	return func(r *Retrier) { r.onRetry = fn }
}

// New creates a Retrier. The policy must already be valid.
func New(policy Policy, opts ...Option) *Retrier {
	r := &Retrier{
		policy: policy,
		clock:  clockwork.NewRealClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Policy returns the retrier's policy.
func (r *Retrier) Policy() Policy {
	return r.policy
}

// Do runs op until it succeeds, returns an error shouldRetry rejects, or the
// policy's attempts are used up. The last attempt's error is returned as is.
// Cancelling ctx during a backoff wait stops the loop.
func (r *Retrier) Do(ctx context.Context, shouldRetry func(error) bool, op Operation) error {
	for attempt := 1; ; attempt++ {
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		if attempt >= r.policy.MaxAttempts || !shouldRetry(err) {
			return err
		}

		delay := r.policy.Delay(attempt)
		r.logger.Warn("attempt failed, backing off",
			"attempt", attempt,
			"max_attempts", r.policy.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if r.onRetry != nil {
			r.onRetry(attempt, err, delay)
		}

		if werr := r.wait(ctx, delay); werr != nil {
			return fmt.Errorf("retry aborted after attempt %d: %w (last error: %v)", attempt, werr, err)
		}
	}
}

func (r *Retrier) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := r.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.Chan():
		return nil
	}
}
