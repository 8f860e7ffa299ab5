package pomodoro

import "time"

// State identifies the phase a pomodoro is in.
type State uint8

const (
	// StateWork is a focus session.
	StateWork State = iota + 1
	// StateBreak is a short break between work sessions.
	StateBreak
	// StateLongBreak replaces every Nth short break.
	StateLongBreak
	// StateStandby waits for the user to start the next phase.
	StateStandby
)

// String returns the lowercase name used in logs and storage.
func (s State) String() string {
	switch s {
	case StateWork:
		return "work"
	case StateBreak:
		return "break"
	case StateLongBreak:
		return "long_break"
	case StateStandby:
		return "standby"
	}
	return "unknown"
}

// IsBreak reports whether s is one of the break phases.
func (s State) IsBreak() bool {
	return s == StateBreak || s == StateLongBreak
}

// NoTimerSet is returned as the time left while a pomodoro is in standby.
const NoTimerSet = "No timer set (type /start to proceed with your pomodoro)"

// Settings controls phase durations and the inactivity threshold.
type Settings struct {
	Work      time.Duration
	Break     time.Duration
	LongBreak time.Duration
	// Standby is the placeholder countdown that re-pings a user in standby.
	Standby time.Duration
	// LongBreakEvery turns a break into a long break when the work
	// counter is divisible by it.
	LongBreakEvery int
	// InactivityLimit is the number of consecutive unanswered expiries
	// after which a pomodoro is purged.
	InactivityLimit int
}

// DefaultSettings returns the classic 25/5/15 cycle.
func DefaultSettings() Settings {
	return Settings{
		Work:            25 * time.Minute,
		Break:           5 * time.Minute,
		LongBreak:       15 * time.Minute,
		Standby:         1 * time.Minute,
		LongBreakEvery:  4,
		InactivityLimit: 5,
	}
}

func (s Settings) withDefaults() Settings {
	def := DefaultSettings()
	if s.Work <= 0 {
		s.Work = def.Work
	}
	if s.Break <= 0 {
		s.Break = def.Break
	}
	if s.LongBreak <= 0 {
		s.LongBreak = def.LongBreak
	}
	if s.Standby <= 0 {
		s.Standby = def.Standby
	}
	if s.LongBreakEvery <= 0 {
		s.LongBreakEvery = def.LongBreakEvery
	}
	if s.InactivityLimit <= 0 {
		s.InactivityLimit = def.InactivityLimit
	}
	return s
}
