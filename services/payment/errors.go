package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrVerificationRejected means the server refused the payment proof. The
	// booking stays unpaid and the user may retry.
	ErrVerificationRejected = errors.New("payment verification rejected")
	// ErrAttemptNotFound means no payment flow was started for the booking.
	ErrAttemptNotFound = errors.New("payment attempt not found")
	// ErrAlreadyPaid refuses to start a flow for a booking the server reports as paid.
	ErrAlreadyPaid = errors.New("booking is already paid")
	// ErrBookingNotPayable refuses payment for bookings that are cancelled or rejected.
	ErrBookingNotPayable = errors.New("booking is not open for payment")
	// ErrVerificationInProgress means another request is verifying the same attempt.
	ErrVerificationInProgress = errors.New("payment verification already in progress")
)

// TransitionError is an illegal move in the payment state machine.
type TransitionError struct {
	Code string
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move payment from %s to %s", e.Code, e.From, e.To)
}

func newTransitionError(from, to State) error {
	return &TransitionError{Code: "invalidPaymentTransition", From: from, To: to}
}
