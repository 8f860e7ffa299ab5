package pomodoro

import "time"

// Pomodoro holds one user's work/break cycle.
type Pomodoro struct {
	settings Settings
	clock    Clock

	state    State
	next     State
	cycle    int
	timer    Timer
	expiries int
}

// NewPomodoro returns a pomodoro already running its first work session.
func NewPomodoro(settings Settings, clock Clock) *Pomodoro {
	if clock == nil {
		clock = SystemClock{}
	}
	settings = settings.withDefaults()
	return &Pomodoro{
		settings: settings,
		clock:    clock,
		state:    StateWork,
		next:     StateBreak,
		cycle:    1,
		timer:    NewTimer(clock, settings.Work),
	}
}

// State returns the current phase.
func (p *Pomodoro) State() State { return p.state }

// Next returns the phase entered by the next Start.
func (p *Pomodoro) Next() State { return p.next }

// Cycle returns the number of work sessions begun so far.
func (p *Pomodoro) Cycle() int { return p.cycle }

// Expiries returns the consecutive unanswered expiry count.
func (p *Pomodoro) Expiries() int { return p.expiries }

// Deadline returns the deadline of the current timer.
func (p *Pomodoro) Deadline() time.Time { return p.timer.Deadline() }

// Start leaves standby and begins the next phase.
func (p *Pomodoro) Start() (State, error) {
	to, err := startTransition(p.state, p.next, p.cycle, p.settings.LongBreakEvery)
	if err != nil {
		return p.state, err
	}
	switch to {
	case StateWork:
		p.cycle++
		p.next = StateBreak
		p.timer = NewTimer(p.clock, p.settings.Work)
	case StateLongBreak:
		p.next = StateWork
		p.timer = NewTimer(p.clock, p.settings.LongBreak)
	case StateBreak:
		p.next = StateWork
		p.timer = NewTimer(p.clock, p.settings.Break)
	}
	p.state = to
	p.expiries = 0
	return to, nil
}

// Skip abandons the current phase and moves to standby.
// The cycle and expiry counters are left as they are.
func (p *Pomodoro) Skip() error {
	to, err := skipTransition(p.state)
	if err != nil {
		return err
	}
	p.enterStandby(to)
	return nil
}

// CheckAndConsumeExpiry reports whether the current timer is due. A due
// timer moves the pomodoro to standby, arms the placeholder countdown and
// counts one unanswered expiry, so callers must check once per poll.
func (p *Pomodoro) CheckAndConsumeExpiry() bool {
	if !p.timer.Expired() {
		return false
	}
	p.enterStandby(StateStandby)
	p.expiries++
	return true
}

// Inactive reports whether the user ignored enough expiries to be purged.
func (p *Pomodoro) Inactive() bool {
	return p.expiries >= p.settings.InactivityLimit
}

// TimeLeft describes the remaining time of the running phase.
func (p *Pomodoro) TimeLeft() string {
	if p.state == StateStandby {
		return NoTimerSet
	}
	return p.timer.Describe()
}

// Remaining returns the remaining duration of the current timer. In
// standby this is the time until the next reminder.
func (p *Pomodoro) Remaining() time.Duration {
	return p.timer.Remaining()
}

func (p *Pomodoro) enterStandby(to State) {
	p.state = to
	p.timer = NewTimer(p.clock, p.settings.Standby)
}

// startTransition resolves the phase entered from standby.
func startTransition(from, next State, cycle, longEvery int) (State, error) {
	if from != StateStandby {
		return from, ErrInvalidInput
	}
	if next == StateWork {
		return StateWork, nil
	}
	if longEvery > 0 && cycle%longEvery == 0 {
		return StateLongBreak, nil
	}
	return StateBreak, nil
}

func skipTransition(from State) (State, error) {
	if from == StateStandby {
		return from, ErrInvalidInput
	}
	return StateStandby, nil
}
