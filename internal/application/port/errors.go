package port

import (
	"errors"
	"fmt"
)

// Record store failure kinds. Match them with errors.Is.
var (
	// ErrStoreUnavailable means the backing service could not be reached
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrStoreError means the store answered with a failure message
	ErrStoreError = errors.New("record store error")

	// ErrValidationRejected means the store refused the payload
	ErrValidationRejected = errors.New("bill rejected by record store")

	// ErrUploadFailed means the receipt transfer failed
	ErrUploadFailed = errors.New("receipt upload failed")

	// ErrNotFound means the bill to update does not exist
	ErrNotFound = errors.New("bill not found")

	// ErrForbidden means the session may not perform the change
	ErrForbidden = errors.New("operation not permitted")
)

// StoreError carries the failure kind, the operation and the server-supplied message.
type StoreError struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

// NewStoreError creates a StoreError of the given kind
func NewStoreError(kind error, op, message string, err error) *StoreError {
	return &StoreError{Kind: kind, Op: op, Message: message, Err: err}
}

func (e *StoreError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As
func (e *StoreError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UserMessage returns the text to surface to the user for a store failure
func UserMessage(err error) string {
	var storeErr *StoreError
	if errors.As(err, &storeErr) && storeErr.Message != "" {
		return storeErr.Message
	}
	return err.Error()
}
