package pomodoro

import (
	"errors"
	"testing"
	"time"
)

type route struct {
	chat int64
}

func newTestHandler(clock Clock) *Handler[route] {
	return NewHandler(Options[route]{Settings: DefaultSettings(), Clock: clock})
}

func TestHandlerRegister(t *testing.T) {
	h := newTestHandler(newFakeClock())

	if err := h.Register(1, route{chat: 10}); err != nil {
		t.Fatalf("register: %v", err)
	}
	st, err := h.State(1)
	if err != nil || st != StateWork {
		t.Fatalf("state = %s, %v; want work", st, err)
	}
	snap, _ := h.Snapshot(1)
	if snap.Expiries != 0 || snap.Cycle != 1 {
		t.Fatalf("fresh snapshot = %+v", snap)
	}
	if got := h.PollExpired(); len(got) != 0 {
		t.Fatalf("poll expired = %v, want empty", got)
	}
	if got := h.PollInactive(); len(got) != 0 {
		t.Fatalf("poll inactive = %v, want empty", got)
	}
}

func TestHandlerDoubleRegister(t *testing.T) {
	h := newTestHandler(newFakeClock())
	_ = h.Register(1, route{chat: 10})
	_ = h.Skip(1)

	err := h.Register(1, route{chat: 99})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("second register: err = %v, want ErrInvalidInput", err)
	}
	if st, _ := h.State(1); st != StateStandby {
		t.Fatalf("second register replaced the pomodoro, state = %s", st)
	}
	assertRoute(t, h, 1, route{chat: 10})
}

func assertRoute[R comparable](t *testing.T, h *Handler[R], userID int64, want R) {
	t.Helper()
	h.mu.Lock()
	rec := h.records[userID]
	h.mu.Unlock()
	if rec == nil {
		t.Fatalf("user %d not registered", userID)
	}
	if rec.route != want {
		t.Fatalf("route = %v, want %v", rec.route, want)
	}
}

func TestHandlerUnknownUser(t *testing.T) {
	h := newTestHandler(newFakeClock())
	_ = h.Register(1, route{})

	checks := map[string]error{}
	_, checks["start"] = h.Start(2)
	checks["skip"] = h.Skip(2)
	checks["end"] = h.End(2)
	_, checks["state"] = h.State(2)
	_, checks["time_left"] = h.TimeLeft(2)
	_, checks["snapshot"] = h.Snapshot(2)

	for op, err := range checks {
		if !errors.Is(err, ErrUnknownUser) {
			t.Fatalf("%s: err = %v, want ErrUnknownUser", op, err)
		}
		var opErr *OpError
		if !errors.As(err, &opErr) || opErr.Code() != "UNKNOWN_USER" {
			t.Fatalf("%s: expected OpError with UNKNOWN_USER code, got %v", op, err)
		}
	}

	if _, err := h.TimeLeft(1); err != nil {
		t.Fatalf("registered user time left: %v", err)
	}
}

func TestHandlerInvalidInput(t *testing.T) {
	h := newTestHandler(newFakeClock())
	_ = h.Register(1, route{})

	if err := h.Skip(1); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if err := h.Skip(1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("skip in standby: err = %v", err)
	}
	if _, err := h.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.Start(1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("start while running: err = %v", err)
	}
	if fb, ok := FeedbackOf(h.Skip(1)); !ok || fb != FeedbackPass {
		t.Fatalf("feedback for skip = %v", fb)
	}
	if fb, _ := FeedbackOf(h.Skip(1)); fb != FeedbackInvalidInput {
		t.Fatalf("feedback for repeated skip = %v", fb)
	}
}

func TestHandlerFullCycle(t *testing.T) {
	h := newTestHandler(newFakeClock())
	_ = h.Register(1, route{})

	want := []State{StateBreak, StateWork, StateBreak, StateWork, StateBreak, StateWork, StateLongBreak}
	for i, w := range want {
		if err := h.Skip(1); err != nil {
			t.Fatalf("step %d skip: %v", i, err)
		}
		if st, _ := h.State(1); st != StateStandby {
			t.Fatalf("step %d: state after skip = %s", i, st)
		}
		got, err := h.Start(1)
		if err != nil {
			t.Fatalf("step %d start: %v", i, err)
		}
		if got != w {
			t.Fatalf("step %d: start = %s, want %s", i, got, w)
		}
		if st, _ := h.State(1); st != w {
			t.Fatalf("step %d: state = %s, want %s", i, st, w)
		}
	}
}

func TestHandlerPollExpired(t *testing.T) {
	clock := newFakeClock()
	h := newTestHandler(clock)
	_ = h.Register(1, route{chat: 10})

	clock.Advance(10 * time.Minute)
	_ = h.Register(2, route{chat: 20})

	if got := h.PollExpired(); len(got) != 0 {
		t.Fatalf("poll before deadline = %v", got)
	}
	clock.Advance(15 * time.Minute)
	got := h.PollExpired()
	if len(got) != 1 || got[0].chat != 10 {
		t.Fatalf("poll after deadline = %v, want [{10}]", got)
	}
	if st, _ := h.State(1); st != StateStandby {
		t.Fatalf("expired user state = %s, want standby", st)
	}
	if st, _ := h.State(2); st != StateWork {
		t.Fatalf("other user state = %s, want work", st)
	}
	if got := h.PollExpired(); len(got) != 0 {
		t.Fatalf("expiry reported twice: %v", got)
	}
}

func TestHandlerPollInactive(t *testing.T) {
	clock := newFakeClock()
	h := newTestHandler(clock)
	_ = h.Register(1, route{chat: 10})
	clock.Advance(20 * time.Minute)
	_ = h.Register(2, route{chat: 20})
	clock.Advance(5 * time.Minute)

	for i := 0; i < 5; i++ {
		if got := h.PollInactive(); len(got) != 0 {
			t.Fatalf("purged too early at round %d", i)
		}
		got := h.PollExpired()
		if len(got) != 1 || got[0].chat != 10 {
			t.Fatalf("round %d: expired = %v, want [{10}]", i, got)
		}
		clock.Advance(time.Minute)
	}

	got := h.PollInactive()
	if len(got) != 1 || got[0].chat != 10 {
		t.Fatalf("inactive = %v, want [{10}]", got)
	}
	if got := h.PollInactive(); len(got) != 0 {
		t.Fatalf("user purged twice: %v", got)
	}
	if _, err := h.State(1); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("purged user state: err = %v", err)
	}
	if h.ActiveCount() != 1 {
		t.Fatalf("active = %d, want 1", h.ActiveCount())
	}
}

func TestHandlerEndAllowsFreshRegister(t *testing.T) {
	h := newTestHandler(newFakeClock())
	_ = h.Register(1, route{})
	_ = h.Skip(1)
	_, _ = h.Start(1)

	if err := h.End(1); err != nil {
		t.Fatalf("end: %v", err)
	}
	if h.ActiveCount() != 0 {
		t.Fatalf("active = %d after end", h.ActiveCount())
	}
	if err := h.Register(1, route{}); err != nil {
		t.Fatalf("register after end: %v", err)
	}
	snap, _ := h.Snapshot(1)
	if snap.State != StateWork || snap.Cycle != 1 || snap.Expiries != 0 {
		t.Fatalf("register after end is not fresh: %+v", snap)
	}
}

func TestHandlerObserver(t *testing.T) {
	clock := newFakeClock()
	var events []Event[route]
	h := NewHandler(Options[route]{
		Clock:    clock,
		Observer: func(ev Event[route]) { events = append(events, ev) },
	})

	_ = h.Register(1, route{chat: 7})
	_ = h.Register(1, route{chat: 7})
	_ = h.Skip(1)
	_ = h.Skip(1)
	_, _ = h.Start(1)
	clock.Advance(5 * time.Minute)
	h.PollExpired()
	_ = h.End(1)
	_ = h.End(1)

	kinds := []EventKind{EventRegistered, EventSkipped, EventStarted, EventExpired, EventEnded}
	if len(events) != len(kinds) {
		t.Fatalf("events = %d, want %d: %+v", len(events), len(kinds), events)
	}
	for i, k := range kinds {
		if events[i].Kind != k {
			t.Fatalf("event %d = %s, want %s", i, events[i].Kind, k)
		}
		if events[i].UserID != 1 || events[i].Route.chat != 7 {
			t.Fatalf("event %d has wrong identity: %+v", i, events[i])
		}
	}
	if events[2].From != StateStandby || events[2].To != StateBreak {
		t.Fatalf("started event = %+v", events[2])
	}
	if events[3].From != StateBreak {
		t.Fatalf("expired event from = %s, want break", events[3].From)
	}
}
