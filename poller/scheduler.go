package poller

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultInitialBackoff approximates one block production interval.
	DefaultInitialBackoff = 400 * time.Millisecond
	// DefaultMaxBackoff caps the doubling.
	DefaultMaxBackoff = 5 * time.Second
)

// Scheduler produces the waits between poll iterations and owns the
// loop's deadline. It is created at loop entry and discarded with it.
type Scheduler struct {
	backoff  *backoff.ExponentialBackOff
	deadline time.Time
}

// NewScheduler starts a schedule at start. A timeout <= 0 leaves the
// schedule without a deadline.
func NewScheduler(cfg Config, start time.Time, timeout time.Duration) *Scheduler {
	ApplyDefaults(&cfg)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialBackoff
	b.MaxInterval = cfg.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()

	s := &Scheduler{backoff: b}
	if timeout > 0 {
		s.deadline = start.Add(timeout)
	}
	return s
}

// Next returns the wait before the next iteration and doubles the one
// after it, up to the configured maximum.
func (s *Scheduler) Next() time.Duration {
	return s.backoff.NextBackOff()
}

// Deadline returns the loop deadline, if one was set.
func (s *Scheduler) Deadline() (time.Time, bool) {
	return s.deadline, !s.deadline.IsZero()
}

// Expired reports whether now is past the deadline.
func (s *Scheduler) Expired(now time.Time) bool {
	return !s.deadline.IsZero() && now.After(s.deadline)
}

// Clamp shortens wait so it ends just past the deadline, keeping the
// final check from landing a full backoff late.
func (s *Scheduler) Clamp(wait time.Duration, now time.Time) time.Duration {
	if s.deadline.IsZero() {
		return wait
	}
	left := s.deadline.Sub(now) + time.Nanosecond
	if left < 0 {
		return 0
	}
	return min(wait, left)
}
