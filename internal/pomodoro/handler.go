package pomodoro

import (
	"sync"
	"time"
)

// EventKind names a registry mutation.
type EventKind string

const (
	EventRegistered EventKind = "registered"
	EventStarted    EventKind = "started"
	EventSkipped    EventKind = "skipped"
	EventExpired    EventKind = "expired"
	EventEnded      EventKind = "ended"
	EventPurged     EventKind = "purged"
)

// Event describes a successful mutation of one user's pomodoro.
type Event[R any] struct {
	Kind   EventKind
	UserID int64
	Route  R
	From   State
	To     State
	Cycle  int
	At     time.Time
}

// Status is a point-in-time view of a user's pomodoro.
type Status struct {
	State     State
	Next      State
	Cycle     int
	Expiries  int
	Remaining time.Duration
	TimeLeft  string
}

// Options configures a Handler.
type Options[R any] struct {
	Settings Settings
	Clock    Clock
	// Observer is called outside the registry lock after every successful
	// mutation. It must not block for long.
	Observer func(Event[R])
}

type record[R any] struct {
	pomodoro *Pomodoro
	route    R
}

// Handler owns every active pomodoro keyed by user id together with the
// route used to notify that user.
type Handler[R any] struct {
	mu       sync.Mutex
	settings Settings
	clock    Clock
	observer func(Event[R])
	records  map[int64]*record[R]
}

// NewHandler builds an empty registry.
func NewHandler[R any](opts Options[R]) *Handler[R] {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return &Handler[R]{
		settings: opts.Settings.withDefaults(),
		clock:    clock,
		observer: opts.Observer,
		records:  make(map[int64]*record[R]),
	}
}

// Settings returns the effective phase settings.
func (h *Handler[R]) Settings() Settings {
	return h.settings
}

// Register creates a pomodoro for the user and remembers the route.
func (h *Handler[R]) Register(userID int64, route R) error {
	ev, err := h.mutate(func() (*Event[R], error) {
		if rec, ok := h.records[userID]; ok {
			return nil, &OpError{Op: "register", UserID: userID, State: rec.pomodoro.State(), Err: ErrInvalidInput}
		}
		p := NewPomodoro(h.settings, h.clock)
		h.records[userID] = &record[R]{pomodoro: p, route: route}
		return h.event(EventRegistered, userID, route, 0, p.State(), p.Cycle()), nil
	})
	h.emit(ev)
	return err
}

// Start begins the next phase for a user in standby and returns it.
func (h *Handler[R]) Start(userID int64) (State, error) {
	var to State
	ev, err := h.mutate(func() (*Event[R], error) {
		rec, err := h.lookup("start", userID)
		if err != nil {
			return nil, err
		}
		from := rec.pomodoro.State()
		to, err = rec.pomodoro.Start()
		if err != nil {
			return nil, &OpError{Op: "start", UserID: userID, State: from, Err: err}
		}
		return h.event(EventStarted, userID, rec.route, from, to, rec.pomodoro.Cycle()), nil
	})
	if err != nil {
		return 0, err
	}
	h.emit(ev)
	return to, nil
}

// Skip forces the user's running phase into standby.
func (h *Handler[R]) Skip(userID int64) error {
	ev, err := h.mutate(func() (*Event[R], error) {
		rec, err := h.lookup("skip", userID)
		if err != nil {
			return nil, err
		}
		from := rec.pomodoro.State()
		if err := rec.pomodoro.Skip(); err != nil {
			return nil, &OpError{Op: "skip", UserID: userID, State: from, Err: err}
		}
		return h.event(EventSkipped, userID, rec.route, from, StateStandby, rec.pomodoro.Cycle()), nil
	})
	h.emit(ev)
	return err
}

// End removes the user's pomodoro and route.
func (h *Handler[R]) End(userID int64) error {
	ev, err := h.mutate(func() (*Event[R], error) {
		rec, err := h.lookup("end", userID)
		if err != nil {
			return nil, err
		}
		delete(h.records, userID)
		return h.event(EventEnded, userID, rec.route, rec.pomodoro.State(), 0, rec.pomodoro.Cycle()), nil
	})
	h.emit(ev)
	return err
}

// State returns the user's current phase.
func (h *Handler[R]) State(userID int64) (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, err := h.lookup("state", userID)
	if err != nil {
		return 0, err
	}
	return rec.pomodoro.State(), nil
}

// TimeLeft returns a description of the user's remaining time.
func (h *Handler[R]) TimeLeft(userID int64) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, err := h.lookup("time_left", userID)
	if err != nil {
		return "", err
	}
	return rec.pomodoro.TimeLeft(), nil
}

// Snapshot returns a full view of the user's pomodoro.
func (h *Handler[R]) Snapshot(userID int64) (Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, err := h.lookup("snapshot", userID)
	if err != nil {
		return Status{}, err
	}
	p := rec.pomodoro
	return Status{
		State:     p.State(),
		Next:      p.Next(),
		Cycle:     p.Cycle(),
		Expiries:  p.Expiries(),
		Remaining: p.Remaining(),
		TimeLeft:  p.TimeLeft(),
	}, nil
}

// PollExpired runs the expiry check once for every user and returns the
// routes of users whose timer was due.
func (h *Handler[R]) PollExpired() []R {
	var (
		routes []R
		events []*Event[R]
	)
	h.mu.Lock()
	for userID, rec := range h.records {
		from := rec.pomodoro.State()
		if !rec.pomodoro.CheckAndConsumeExpiry() {
			continue
		}
		routes = append(routes, rec.route)
		events = append(events, h.event(EventExpired, userID, rec.route, from, StateStandby, rec.pomodoro.Cycle()))
	}
	h.mu.Unlock()
	h.emit(events...)
	return routes
}

// PollInactive removes users that reached the inactivity limit and
// returns their routes.
func (h *Handler[R]) PollInactive() []R {
	var (
		routes []R
		events []*Event[R]
	)
	h.mu.Lock()
	for userID, rec := range h.records {
		if !rec.pomodoro.Inactive() {
			continue
		}
		delete(h.records, userID)
		routes = append(routes, rec.route)
		events = append(events, h.event(EventPurged, userID, rec.route, rec.pomodoro.State(), 0, rec.pomodoro.Cycle()))
	}
	h.mu.Unlock()
	h.emit(events...)
	return routes
}

// ActiveCount returns the number of registered users.
func (h *Handler[R]) ActiveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

// mutate runs fn under the lock; the event it returns is emitted by the caller.
func (h *Handler[R]) mutate(fn func() (*Event[R], error)) (*Event[R], error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn()
}

// lookup must be called with h.mu held.
func (h *Handler[R]) lookup(op string, userID int64) (*record[R], error) {
	rec, ok := h.records[userID]
	if !ok {
		return nil, &OpError{Op: op, UserID: userID, Err: ErrUnknownUser}
	}
	return rec, nil
}

func (h *Handler[R]) event(kind EventKind, userID int64, route R, from, to State, cycle int) *Event[R] {
	return &Event[R]{
		Kind:   kind,
		UserID: userID,
		Route:  route,
		From:   from,
		To:     to,
		Cycle:  cycle,
		At:     h.clock.Now(),
	}
}

func (h *Handler[R]) emit(events ...*Event[R]) {
	if h.observer == nil {
		return
	}
	for _, ev := range events {
		if ev != nil {
			h.observer(*ev)
		}
	}
}
