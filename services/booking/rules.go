package booking

import (
	"time"

	"campstay/models"
)

// The functions below are the status rules shared by the customer and admin
// flows. They are pure and never fail.

// CanAdminAccept reports whether an administrator may accept a booking.
func CanAdminAccept(status models.BookingStatus) bool {
	return status == models.StatusPending
}

// CanAdminReject reports whether an administrator may reject a booking.
func CanAdminReject(status models.BookingStatus) bool {
	return status == models.StatusPending
}

// CanCustomerCancel holds for pending or accepted bookings strictly before check-in.
func CanCustomerCancel(finalStatus models.BookingStatus, checkIn models.Date, now time.Time) bool {
	if finalStatus != models.StatusPending && finalStatus != models.StatusAccepted {
		return false
	}
	if checkIn.IsZero() {
		return false
	}
	return now.Before(checkIn.Time)
}

// CanonicalStatus maps a raw source status to the canonical vocabulary.
// ok is false for values outside it.
func CanonicalStatus(raw string) (status models.BookingStatus, ok bool) {
	s, err := models.ParseBookingStatus(raw)
	if err != nil {
		return "", false
	}
	return s, true
}

// Decision is an administrator verdict on a pending booking.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// Target is the status a decision moves a booking to.
func (d Decision) Target() models.BookingStatus {
	if d == DecisionAccept {
		return models.StatusAccepted
	}
	return models.StatusRejected
}

// Allowed applies the admin transition rule for the decision.
func (d Decision) Allowed(current models.BookingStatus) bool {
	switch d {
	case DecisionAccept:
		return CanAdminAccept(current)
	case DecisionReject:
		return CanAdminReject(current)
	}
	return false
}
