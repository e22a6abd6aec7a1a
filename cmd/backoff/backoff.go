package backoff

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned by Retry when the policy refuses another attempt.
var ErrExhausted = errors.New("backoff: retries exhausted")

// Policy decides whether another attempt is allowed and how long to wait before it.
type Policy interface {
	// Next is called after a failed attempt. attempt starts at 1, elapsed is the time since the first attempt.
	Next(attempt int, elapsed time.Duration) (wait time.Duration, ok bool)
}

// PolicyFunc implements Policy
type PolicyFunc func(attempt int, elapsed time.Duration) (time.Duration, bool)

// Next wait interval
func (f PolicyFunc) Next(attempt int, elapsed time.Duration) (time.Duration, bool) {
	return f(attempt, elapsed)
}

// Constant waits the same interval between attempts. Zero MaxAttempts and MaxElapsed mean no limit.
type Constant struct {
	Interval    time.Duration
	MaxAttempts int
	MaxElapsed  time.Duration
}

// Forever retries every second without limits
func Forever() *Constant {
	return &Constant{Interval: time.Second}
}

func (c *Constant) Next(attempt int, elapsed time.Duration) (time.Duration, bool) {
	if c.MaxAttempts > 0 && attempt >= c.MaxAttempts {
		return 0, false
	}

	if c.MaxElapsed > 0 && elapsed+c.Interval > c.MaxElapsed {
		return 0, false
	}

	return c.Interval, true
}

// Retry calls fn until it reports done, returns an error or the policy gives up. fn receives the attempt number
// starting at 1. When the policy gives up the last reason returned by fn is wrapped together with ErrExhausted.
func Retry(ctx context.Context, policy Policy, clock Clock, fn func(attempt int) (done bool, reason error, err error)) error {
	if clock == nil {
		clock = System
	}

	start := clock.Now()

	for attempt := 1; ; attempt++ {
		done, reason, err := fn(attempt)
		if err != nil || done {
			return err
		}

		wait, ok := policy.Next(attempt, clock.Now().Sub(start))
		if !ok {
			if reason == nil {
				return ErrExhausted
			}

			return &exhaustedError{attempts: attempt, reason: reason}
		}

		if err := clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}
}

type exhaustedError struct {
	attempts int
	reason   error
}

func (e *exhaustedError) Error() string {
	return fmt.Sprintf("%v after %d attempts: %v", ErrExhausted, e.attempts, e.reason)
}

func (e *exhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func (e *exhaustedError) Unwrap() error {
	return e.reason
}
