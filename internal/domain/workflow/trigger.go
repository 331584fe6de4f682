package workflow

// Trigger represents a form event that can move the draft to another state
type Trigger string

const (
	TriggerSelectFile Trigger = "SELECT_FILE"
	TriggerClearFile  Trigger = "CLEAR_FILE"
	TriggerSubmit     Trigger = "SUBMIT"
	TriggerSucceed    Trigger = "SUCCEED"
	TriggerFail       Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
