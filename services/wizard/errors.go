package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// WizardError is a typed domain error with a stable code handlers can map to
// an HTTP status.
type WizardError struct {
	Code    string
	Message string
}

func (e *WizardError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	// ErrSessionNotFound is returned when a wizard session is absent or expired.
	ErrSessionNotFound = &WizardError{Code: "session_not_found", Message: "wizard session not found or expired"}
	// ErrCallInFlight is returned when a booking call for the session is
	// already running; duplicate submissions must never reach the network.
	ErrCallInFlight = &WizardError{Code: "call_in_flight", Message: "a booking call is already in progress for this session"}
	// ErrNoExitPending is returned when an exit resolution arrives without a
	// preceding exit request.
	ErrNoExitPending = &WizardError{Code: "no_exit_pending", Message: "no exit confirmation is pending"}
)

// NewStepStateError reports an operation submitted for the wrong wizard step.
func NewStepStateError(want, got Step) error {
	return &WizardError{
		Code:    "step_mismatch",
		Message: fmt.Sprintf("operation belongs to step %s but the wizard is at %s", want, got),
	}
}

// ValidationError carries the field-level error mapping a step validator
// produced. It never reaches the network and blocks the sequencer's Next.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// FetchError marks a retryable collaborator lookup failure (availability or
// consultant directory). Draft state is never touched by a failed fetch.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
