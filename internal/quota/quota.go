package quota

import (
	"context"
	"errors"
	"time"
)

// Counter reports how many analysis records a user created within [from, to).
// The analyses repository is the source of truth; the limiter itself holds no
// state, so checks stay correct across multiple server instances.
type Counter interface {
	CountByUserInRange(ctx context.Context, userID string, from, to time.Time) (int, error)
}

// Status is a snapshot of a user's daily analysis allowance. It is computed
// fresh on every check and never persisted.
type Status struct {
	Allowed   bool      `json:"allowed"`
	Count     int       `json:"count"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
}

// Limiter decides whether a user may run another AI analysis today.
type Limiter struct {
	counter Counter
	limit   int
	bypass  bool
	now     func() time.Time
}

// ErrUserRequired is returned when a check is attempted without a user ID.
var ErrUserRequired = errors.New("user id is required")

// NewLimiter constructs a Limiter. A nil now func defaults to time.Now.
func NewLimiter(counter Counter, limit int, bypass bool, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{counter: counter, limit: limit, bypass: bypass, now: now}
}

// Limit returns the configured daily limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Check computes the current Status for a user using the limiter's clock.
func (l *Limiter) Check(ctx context.Context, userID string) (Status, error) {
	return l.CheckAt(ctx, userID, l.now())
}

// CheckAt computes the Status for a user as of the given instant. It is a
// pure read: two concurrent checks can both pass before either request
// persists its record, so the effective daily count may exceed the limit by
// the number of in-flight requests minus one.
func (l *Limiter) CheckAt(ctx context.Context, userID string, now time.Time) (Status, error) {
	if userID == "" {
		return Status{}, ErrUserRequired
	}

	resetsAt := EndOfDay(now)
	if l.bypass {
		return Status{
			Allowed:   true,
			Count:     0,
			Limit:     l.limit,
			Remaining: l.limit,
			ResetsAt:  resetsAt,
		}, nil
	}

	count, err := l.counter.CountByUserInRange(ctx, userID, StartOfDay(now), resetsAt)
	if err != nil {
		return Status{}, err
	}

	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Allowed:   count < l.limit,
		Count:     count,
		Limit:     l.limit,
		Remaining: remaining,
		ResetsAt:  resetsAt,
	}, nil
}

// StartOfDay returns midnight of the calendar day containing t, in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of the calendar day containing t.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Millisecond)
}
