package timekeeper

import (
	"fmt"
	"sync"
	"time"
)

type ElapsingStatus int

const (
	Running ElapsingStatus = 1
	Pause   ElapsingStatus = 2
)

// Elapsing measures running time that excludes paused intervals. The engine
// pauses it while a delay node waits so a run reports its active time.
type Elapsing struct {
	mu  sync.Mutex
	now func() time.Time

	checkpoint time.Time

	// time accumulated since the last Report
	carryOn time.Duration
	// time accumulated since the last Reset
	total time.Duration

	status ElapsingStatus
}

func NewElapsing() *Elapsing {
	// time.Now carries both wallclock and monotonic clock so it can be used
	// for deltas as well
	return NewElapsingWithClock(time.Now)
}

func NewElapsingWithClock(now func() time.Time) *Elapsing {
	return &Elapsing{
		now:        now,
		checkpoint: now(),
		status:     Running,
	}
}

func (e *Elapsing) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == Pause {
		return fmt.Errorf("elapsing is pause already")
	}

	e.advance()
	e.status = Pause

	return nil
}

func (e *Elapsing) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != Pause {
		return fmt.Errorf("elapsing is not pause")
	}

	e.checkpoint = e.now()
	e.status = Running

	return nil
}

func (e *Elapsing) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.status = Running
	e.carryOn = 0
	e.total = 0
	e.checkpoint = e.now()
}

// Report returns the running time since the previous Report
func (e *Elapsing) Report() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.advance()
	delta := e.carryOn
	e.carryOn = 0

	return delta
}

// Total returns the running time since creation or the last Reset
func (e *Elapsing) Total() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.advance()
	return e.total
}

func (e *Elapsing) advance() {
	if e.status == Pause {
		return
	}

	now := e.now()
	delta := now.Sub(e.checkpoint)
	e.carryOn += delta
	e.total += delta
	e.checkpoint = now
}
