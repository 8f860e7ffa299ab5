package pomodoro

import (
	"fmt"
	"time"
)

// Clock abstracts the time source so timers can be driven in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Timer is a single countdown to a fixed deadline.
type Timer struct {
	deadline time.Time
	clock    Clock
}

// NewTimer returns a timer that expires d after the clock's current time.
func NewTimer(clock Clock, d time.Duration) Timer {
	if clock == nil {
		clock = SystemClock{}
	}
	return Timer{deadline: clock.Now().Add(d), clock: clock}
}

// Deadline reports the absolute expiry time.
func (t Timer) Deadline() time.Time {
	return t.deadline
}

// Expired reports whether the deadline has been reached.
func (t Timer) Expired() bool {
	return !t.now().Before(t.deadline)
}

// Remaining returns the time left until the deadline, never negative.
func (t Timer) Remaining() time.Duration {
	left := t.deadline.Sub(t.now())
	if left < 0 {
		return 0
	}
	return left
}

// Describe renders the remaining time in whole minutes and seconds.
func (t Timer) Describe() string {
	secs := int64(t.Remaining() / time.Second)
	return fmt.Sprintf("%d minutes and %d seconds left", secs/60, secs%60)
}

func (t Timer) now() time.Time {
	if t.clock == nil {
		return time.Now()
	}
	return t.clock.Now()
}
