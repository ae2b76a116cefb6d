package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateSubmission is returned when an idempotency key was already used.
	ErrDuplicateSubmission = errors.New("booking already submitted for this action")
	// ErrNotCancellable is returned when the customer may no longer cancel.
	ErrNotCancellable = errors.New("booking can no longer be cancelled")
	// ErrTransitionNotAllowed is returned for admin decisions on non-pending bookings.
	ErrTransitionNotAllowed = errors.New("booking status transition not allowed")
	// ErrUnexpectedBookingState flags a created booking that breaks the creation contract.
	ErrUnexpectedBookingState = errors.New("server returned an unexpected booking state")
)

// FieldError is one user-correctable problem in a draft.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field-level problem found in a draft.
type ValidationError struct {
	Code   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, strings.Join(msgs, "; "))
}

// Has reports whether field has an error.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func newValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Code: "validationError", Fields: fields}
}

// AggregateLoadError means one of the two booking sources failed; no partial list is returned.
type AggregateLoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *AggregateLoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AggregateLoadError) Unwrap() error { return e.Err }

func newAggregateLoadError(err error) error {
	return &AggregateLoadError{
		Code:    "aggregateLoadError",
		Message: "could not load bookings",
		Err:     err,
	}
}
