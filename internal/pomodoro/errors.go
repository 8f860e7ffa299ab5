package pomodoro

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownUser is returned when the user has no active pomodoro.
	ErrUnknownUser = errors.New("pomodoro: unknown user")
	// ErrInvalidInput is returned when the action is not allowed in the current state.
	ErrInvalidInput = errors.New("pomodoro: invalid input")
)

// Feedback is the enumerated outcome of a registry operation.
type Feedback uint8

const (
	// FeedbackPass means the operation succeeded.
	FeedbackPass Feedback = iota
	// FeedbackUnknownUser means the user must register first.
	FeedbackUnknownUser
	// FeedbackInvalidInput means the action is not valid right now.
	FeedbackInvalidInput
)

// OpError describes a rejected registry operation.
type OpError struct {
	Op     string
	UserID int64
	// State is the pomodoro state at rejection time; zero for unknown users.
	State State
	Err   error
}

func (e *OpError) Error() string {
	if e.State != 0 {
		return fmt.Sprintf("pomodoro %s user=%d state=%s: %v", e.Op, e.UserID, e.State, e.Err)
	}
	return fmt.Sprintf("pomodoro %s user=%d: %v", e.Op, e.UserID, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Code returns a stable identifier for structured logs.
func (e *OpError) Code() string {
	switch {
	case errors.Is(e.Err, ErrUnknownUser):
		return "UNKNOWN_USER"
	case errors.Is(e.Err, ErrInvalidInput):
		return "INVALID_INPUT"
	}
	return "POMODORO_ERROR"
}

// FeedbackOf maps an error returned by Handler to its enumerated outcome.
// Errors that are not registry rejections map to FeedbackPass only when nil.
func FeedbackOf(err error) (Feedback, bool) {
	switch {
	case err == nil:
		return FeedbackPass, true
	case errors.Is(err, ErrUnknownUser):
		return FeedbackUnknownUser, true
	case errors.Is(err, ErrInvalidInput):
		return FeedbackInvalidInput, true
	}
	return 0, false
}
