package recordstore

import (
	"encoding/json"
	"errors"

	"github.com/garyjia/billed/internal/application/port"
)

// Error codes carried in the response envelope
const (
	CodeValidationRejected = "validation_rejected"
	CodeUploadFailed       = "upload_failed"
	CodeNotFound           = "not_found"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeStoreError         = "store_error"
)

// Routes of the record store API
const (
	LoginPath = "/api/v1/auth/login"
	BillsPath = "/api/v1/bills"
)

// Multipart field names of a create request
const (
	BillField = "bill"
	FileField = "file"
)

// Envelope is the decoded form of every API response
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// LoginRequest is the body of a login call
type LoginRequest struct {
	Email string `json:"email" binding:"required"`
	Type  string `json:"type" binding:"required"`
}

// CodeFor returns the envelope code of a store failure
func CodeFor(err error) string {
	switch {
	case errors.Is(err, port.ErrValidationRejected):
		return CodeValidationRejected
	case errors.Is(err, port.ErrUploadFailed):
		return CodeUploadFailed
	case errors.Is(err, port.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, port.ErrForbidden):
		return CodeForbidden
	}
	return CodeStoreError
}

// KindForCode maps an envelope code back to a failure kind
func KindForCode(code string) error {
	switch code {
	case CodeValidationRejected:
		return port.ErrValidationRejected
	case CodeUploadFailed:
		return port.ErrUploadFailed
	case CodeNotFound:
		return port.ErrNotFound
	case CodeForbidden, CodeUnauthorized:
		return port.ErrForbidden
	}
	return port.ErrStoreError
}
