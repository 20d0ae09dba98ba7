package timekeeper

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestElapsing(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	elapse := NewElapsingWithClock(clock.Now)

	clock.Advance(50 * time.Millisecond)

	d1 := elapse.Report()
	if d1 != 50*time.Millisecond {
		t.Errorf("elapse time is wrong. expect 50ms, got %s", d1)
	}

	if err := elapse.Pause(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	clock.Advance(2 * time.Second)
	if err := elapse.Resume(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	d2 := elapse.Report()
	if d2 != 0 {
		t.Errorf("paused time must not be reported, got %s", d2)
	}
}

func TestPauseTwice(t *testing.T) {
	elapse := NewElapsing()

	if err := elapse.Pause(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := elapse.Pause(); err == nil {
		t.Errorf("expect error when pausing a paused stopwatch")
	}
	if err := elapse.Resume(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if err := elapse.Resume(); err == nil {
		t.Errorf("expect error when resuming a running stopwatch")
	}
}

func TestReset(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	elapse := NewElapsingWithClock(clock.Now)

	clock.Advance(50 * time.Millisecond)

	elapse.Reset()
	if d1 := elapse.Report(); d1 != 0 {
		t.Errorf("elapse time is wrong. expect 0 after reset, got %s", d1)
	}
	if total := elapse.Total(); total != 0 {
		t.Errorf("total must be cleared by reset, got %s", total)
	}
}

func TestTotalExcludesPause(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	elapse := NewElapsingWithClock(clock.Now)

	clock.Advance(10 * time.Millisecond)
	_ = elapse.Pause()

	clock.Advance(10 * time.Second)
	_ = elapse.Resume()

	clock.Advance(15 * time.Millisecond)
	// Report does not reset the total
	_ = elapse.Report()

	if total := elapse.Total(); total != 25*time.Millisecond {
		t.Errorf("expect 25ms of active time, got %s", total)
	}
}
