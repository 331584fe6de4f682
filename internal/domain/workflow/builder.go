package workflow

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a guarded transition may be taken
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder collects transition rules and builds independent machines from them
type StateMachineBuilder interface {
	// Configure returns the transition configuration of a state
	Configure(state State) StateConfiguration

	// Build creates a machine positioned on the initial state
	Build(initialState State) StateMachine
}

// StateConfiguration configures the outgoing transitions of one state
type StateConfiguration interface {
	// Permit allows a trigger to move to the target state
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows a trigger to move to the target state when the guard passes
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

type stateConfig struct {
	transitions map[Trigger][]transition
}

type stateMachineBuilder struct {
	configurations map[State]*stateConfig
}

// NewBuilder creates an empty state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[State]*stateConfig),
	}
}

func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, exists := b.configurations[state]
	if !exists {
		config = &stateConfig{transitions: make(map[Trigger][]transition)}
		b.configurations[state] = config
	}
	return config
}

// Build copies the configured rules so machines never share mutable state
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	configs := make(map[State]*stateConfig, len(b.configurations))
	for state, config := range b.configurations {
		transitions := make(map[Trigger][]transition, len(config.transitions))
		for trigger, ts := range config.transitions {
			transitions[trigger] = append([]transition{}, ts...)
		}
		configs[state] = &stateConfig{transitions: transitions}
	}

	return &stateMachine{
		currentState:   initialState,
		configurations: configs,
	}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}

	c.transitions[trigger] = append(c.transitions[trigger], transition{
		toState: toState,
		guard:   guard,
	})
	return c
}

// NewDraftMachine builds the lifecycle of a new-bill draft:
//
//	IDLE --select--> FILE_STAGED --submit--> SUBMITTING --succeed--> SUBMITTED
//	FILE_STAGED --select--> FILE_STAGED, FILE_STAGED --clear--> IDLE
//	SUBMITTING --fail--> IDLE
//
// submit is only taken while hasStagedFile holds. A nil guard always passes.
func NewDraftMachine(hasStagedFile GuardFunc) StateMachine {
	builder := NewBuilder()

	builder.Configure(StateIdle).
		Permit(TriggerSelectFile, StateFileStaged)

	builder.Configure(StateFileStaged).
		Permit(TriggerSelectFile, StateFileStaged).
		Permit(TriggerClearFile, StateIdle).
		PermitIf(TriggerSubmit, StateSubmitting, hasStagedFile)

	builder.Configure(StateSubmitting).
		Permit(TriggerSucceed, StateSubmitted).
		Permit(TriggerFail, StateIdle)

	// SUBMITTED is terminal

	return builder.Build(StateIdle)
}
