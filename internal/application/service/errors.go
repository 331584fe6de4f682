package service

import "errors"

var (
	// ErrReceiptRejected is returned when the selected file is not a JPEG or PNG image
	ErrReceiptRejected = errors.New("receipt must be a jpg, jpeg or png image")

	// ErrNoReceiptStaged is returned when the form is submitted without a receipt
	ErrNoReceiptStaged = errors.New("a receipt must be attached before submitting")

	// ErrSubmissionInFlight is returned while a create call has not settled
	ErrSubmissionInFlight = errors.New("submission already in progress")

	// ErrAlreadySubmitted is returned once the draft has been persisted
	ErrAlreadySubmitted = errors.New("bill already submitted")
)
