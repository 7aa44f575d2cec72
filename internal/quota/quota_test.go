package quota

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeCounter struct {
	created []time.Time
	calls   int
	err     error
}

func (f *fakeCounter) CountByUserInRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, at := range f.created {
		if !at.Before(from) && at.Before(to) {
			count++
		}
	}
	return count, nil
}

func TestDayWindowBoundsContainNow(t *testing.T) {
	instants := []time.Time{
		time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 15, 12, 30, 45, 999, time.UTC),
		time.Date(2026, time.March, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC),
	}
	for _, now := range instants {
		start := StartOfDay(now)
		end := EndOfDay(now)
		if start.After(now) {
			t.Fatalf("StartOfDay(%v) = %v is after now", now, start)
		}
		if now.After(end) {
			t.Fatalf("EndOfDay(%v) = %v is before now", now, end)
		}
	}
}

func TestDayWindowStableWithinDayAndDiffersAcrossDays(t *testing.T) {
	morning := time.Date(2026, time.March, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, time.March, 15, 22, 15, 0, 0, time.UTC)
	nextDay := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)

	if !StartOfDay(morning).Equal(StartOfDay(evening)) {
		t.Fatalf("start of day unstable within the same day")
	}
	if !EndOfDay(morning).Equal(EndOfDay(evening)) {
		t.Fatalf("end of day unstable within the same day")
	}
	if StartOfDay(morning).Equal(StartOfDay(nextDay)) {
		t.Fatalf("start of day did not advance across day boundary")
	}
}

func TestCheckGatesAtLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	counter := &fakeCounter{}
	limiter := NewLimiter(counter, 3, false, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		status, err := limiter.Check(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !status.Allowed {
			t.Fatalf("expected allowed at count %d", i)
		}
		if status.Count != i {
			t.Fatalf("expected count %d, got %d", i, status.Count)
		}
		if status.Remaining != 3-i {
			t.Fatalf("expected remaining %d, got %d", 3-i, status.Remaining)
		}
		counter.created = append(counter.created, now)
	}

	status, err := limiter.Check(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Allowed {
		t.Fatalf("expected allowed=false after 3 analyses")
	}
	if status.Count != 3 || status.Remaining != 0 {
		t.Fatalf("expected count=3 remaining=0, got count=%d remaining=%d", status.Count, status.Remaining)
	}
	if !status.ResetsAt.Equal(EndOfDay(now)) {
		t.Fatalf("expected resetsAt %v, got %v", EndOfDay(now), status.ResetsAt)
	}
}

func TestDayRolloverResetsCount(t *testing.T) {
	dayD := time.Date(2026, time.March, 15, 18, 0, 0, 0, time.UTC)
	counter := &fakeCounter{created: []time.Time{dayD, dayD.Add(time.Hour), dayD.Add(2 * time.Hour)}}
	limiter := NewLimiter(counter, 3, false, nil)

	status, err := limiter.CheckAt(context.Background(), "user-1", dayD.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("CheckAt: %v", err)
	}
	if status.Allowed || status.Count != 3 {
		t.Fatalf("expected exhausted on day D, got %+v", status)
	}

	dayAfter := time.Date(2026, time.March, 16, 0, 0, 1, 0, time.UTC)
	status, err = limiter.CheckAt(context.Background(), "user-1", dayAfter)
	if err != nil {
		t.Fatalf("CheckAt: %v", err)
	}
	if !status.Allowed || status.Count != 0 {
		t.Fatalf("expected fresh window on day D+1, got %+v", status)
	}
}

func TestBypassSkipsCounter(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	counter := &fakeCounter{created: []time.Time{now, now, now, now, now}}
	limiter := NewLimiter(counter, 3, true, func() time.Time { return now })

	status, err := limiter.Check(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !status.Allowed || status.Count != 0 {
		t.Fatalf("expected bypass to allow with count=0, got %+v", status)
	}
	if counter.calls != 0 {
		t.Fatalf("expected no counter queries under bypass, got %d", counter.calls)
	}
	if !status.ResetsAt.Equal(EndOfDay(now)) {
		t.Fatalf("expected resetsAt %v, got %v", EndOfDay(now), status.ResetsAt)
	}

	// With bypass off the same seeded records gate the user again.
	strict := NewLimiter(counter, 3, false, func() time.Time { return now })
	status, err = strict.Check(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if status.Allowed || status.Count != 5 {
		t.Fatalf("expected strict limiter to count records, got %+v", status)
	}
}

func TestCheckRequiresUser(t *testing.T) {
	limiter := NewLimiter(&fakeCounter{}, 3, false, nil)
	if _, err := limiter.Check(context.Background(), ""); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}
}

func TestCheckPropagatesCounterError(t *testing.T) {
	counter := &fakeCounter{err: errors.New("db down")}
	limiter := NewLimiter(counter, 3, false, nil)
	if _, err := limiter.Check(context.Background(), "user-1"); err == nil {
		t.Fatalf("expected counter error to propagate")
	}
}

func TestFormatTimeUntilReset(t *testing.T) {
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		resetsAt time.Time
		want     string
	}{
		{"90 minutes", now.Add(90 * time.Minute), "1 hour"},
		{"45 minutes", now.Add(45 * time.Minute), "45 minutes"},
		{"exactly now", now, "now"},
		{"in the past", now.Add(-time.Minute), "now"},
		{"three hours", now.Add(3*time.Hour + 10*time.Minute), "3 hours"},
		{"one minute", now.Add(90 * time.Second), "1 minute"},
		{"thirty seconds", now.Add(30 * time.Second), "less than a minute"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatTimeUntilReset(tc.resetsAt, now); got != tc.want {
				t.Fatalf("FormatTimeUntilReset = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLimitMessageIncludesCountAndLimit(t *testing.T) {
	now := time.Date(2026, time.March, 15, 22, 0, 0, 0, time.UTC)
	status := Status{Allowed: false, Count: 3, Limit: 3, ResetsAt: EndOfDay(now)}

	msg := LimitMessage(status, now)
	if !strings.Contains(msg, "3/3") {
		t.Fatalf("expected message to contain 3/3, got %q", msg)
	}
	if !strings.Contains(msg, "1 hour") {
		t.Fatalf("expected message to contain the wait time, got %q", msg)
	}

	// Same inputs, same message.
	if again := LimitMessage(status, now); again != msg {
		t.Fatalf("LimitMessage is not deterministic: %q vs %q", msg, again)
	}
}
