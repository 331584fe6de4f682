package workflow

import (
	"context"
	"fmt"
)

// StateMachine tracks the current state of one draft and validates transitions.
// A machine is not safe for concurrent use; its owner serialises access.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger has a transition from the current state
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the first permitted target state
	Fire(ctx context.Context, trigger Trigger) error
}

type stateMachine struct {
	currentState   State
	configurations map[State]*stateConfig
}

func (m *stateMachine) State() State {
	return m.currentState
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return false
	}
	return len(config.transitions[trigger]) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	if m.currentState.IsTerminal() {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrTerminalState, trigger, m.currentState)
	}

	config, exists := m.configurations[m.currentState]
	if !exists || len(config.transitions[trigger]) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.currentState)
	}

	for _, t := range config.transitions[trigger] {
		if t.guard == nil || t.guard(ctx) {
			m.currentState = t.toState
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.currentState)
}
