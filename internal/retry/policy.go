// Package retry runs an operation under an explicit exponential backoff policy.
package retry

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"time"
)

// Policy describes how many times an operation is attempted and how long to
// wait between attempts. It is a value type; build it once and share it.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration
	// Multiplier grows the wait geometrically: BaseDelay * Multiplier^(n-1).
	Multiplier float64
	// MaxDelay caps any single wait. Zero means uncapped.
	MaxDelay time.Duration
	// RetryableStatus lists HTTP status codes worth another attempt.
	RetryableStatus []int
}

// DefaultRetryableStatus is the status set retried when none is configured.
var DefaultRetryableStatus = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// DefaultPolicy returns 3 attempts, 1s base delay doubling per attempt, capped at 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		Multiplier:      2,
		MaxDelay:        10 * time.Second,
		RetryableStatus: slices.Clone(DefaultRetryableStatus),
	}
}

// Validate reports the first invalid field.
func (p Policy) Validate() error {
	switch {
	case p.MaxAttempts < 1:
		return fmt.Errorf("retry policy: max attempts must be at least 1, got %d", p.MaxAttempts)
	case p.BaseDelay < 0:
		return fmt.Errorf("retry policy: base delay must not be negative, got %s", p.BaseDelay)
	case p.Multiplier < 1:
		return fmt.Errorf("retry policy: multiplier must be at least 1, got %g", p.Multiplier)
	case p.MaxDelay < 0:
		return errors.New("retry policy: max delay must not be negative")
	}
	return nil
}

// Delay returns the wait after the given failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}

	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// IsRetryableStatus reports whether code is in the policy's retry set.
func (p Policy) IsRetryableStatus(code int) bool {
	return slices.Contains(p.RetryableStatus, code)
}
