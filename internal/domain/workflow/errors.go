package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTerminalState is returned when a trigger is fired after the draft was submitted
	ErrTerminalState = errors.New("draft already in a terminal state")

	// ErrGuardFailed is returned when every guarded transition for a trigger refuses
	ErrGuardFailed = errors.New("guard condition failed")
)
