package workflow

// State represents a step in the lifecycle of a new-bill draft
type State string

const (
	StateIdle       State = "IDLE"
	StateFileStaged State = "FILE_STAGED"
	StateSubmitting State = "SUBMITTING"
	StateSubmitted  State = "SUBMITTED"
)

var validStates = map[State]bool{
	StateIdle:       true,
	StateFileStaged: true,
	StateSubmitting: true,
	StateSubmitted:  true,
}

var terminalStates = map[State]bool{
	StateSubmitted: true,
}

// IsTerminal returns true if the draft can no longer change
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known draft state
func (s State) IsValid() bool {
	return validStates[s]
}
