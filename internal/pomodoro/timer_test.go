package pomodoro

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTimerExpiry(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock, 25*time.Minute)

	if timer.Expired() {
		t.Fatal("fresh timer must not be expired")
	}
	clock.Advance(25*time.Minute - time.Second)
	if timer.Expired() {
		t.Fatal("timer expired one second early")
	}
	clock.Advance(time.Second)
	if !timer.Expired() {
		t.Fatal("timer must expire exactly at the deadline")
	}
}

func TestTimerDescribe(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(clock, 5*time.Minute)

	if got := timer.Describe(); got != "5 minutes and 0 seconds left" {
		t.Fatalf("describe = %q", got)
	}
	clock.Advance(2*time.Minute + 10*time.Second + 400*time.Millisecond)
	if got := timer.Describe(); got != "2 minutes and 49 seconds left" {
		t.Fatalf("describe after advance = %q", got)
	}
	clock.Advance(time.Hour)
	if got := timer.Describe(); got != "0 minutes and 0 seconds left" {
		t.Fatalf("describe after expiry = %q", got)
	}
	if timer.Remaining() != 0 {
		t.Fatalf("remaining after expiry = %s, want 0", timer.Remaining())
	}
}
