// Package models defines the core data structures for IntakeFlow.
//
// It includes the wizard's accumulated assessment context, run state,
// assembled backend records, and API response envelopes shared across modules.
package models

import (
	"errors"
	"fmt"
)

// Validation constants for step input validation
const (
	// MaxNameLength defines the maximum allowed length for the full-name input
	MaxNameLength = 100
	// MaxItemLength defines the maximum allowed length for a single list item (medication, allergy, condition)
	MaxItemLength = 100
	// MaxListItems defines the maximum number of items accepted for a list step
	MaxListItems = 50
	// MaxNoteLength defines the maximum allowed length for a single note
	MaxNoteLength = 500
	// MinBirthYear defines the earliest accepted birth year
	MinBirthYear = 1900
	// MaxSleepHours defines the upper bound for the sleep-hours step
	MaxSleepHours = 24
)

// Error variables for better error handling and testability
var (
	ErrUnknownStep    = errors.New("unknown step key")
	ErrNoHistory      = errors.New("no prior step in history")
	ErrRunNotFound    = errors.New("wizard run not found")
	ErrRunSubmitted   = errors.New("wizard run already submitted")
	ErrNotTerminal    = errors.New("current step is not the review step")
	ErrMissingSession = errors.New("auth token and user id are required")
	ErrNoNoneOption   = errors.New("step has no none-of-these affordance")
)

// ValidationError reports a recoverable, step-local input problem.
// It blocks advancement but never corrupts the accumulated context.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// API Response types for consistent JSON responses

// APIStatus represents the status string of an API response.
type APIStatus string

const (
	// APIStatusOK indicates a successful API operation.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates a failed API operation.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with the given message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
