package payment

import (
	"context"

	"campstay/models"
	"campstay/services/session"
)

// API is the slice of the marketplace API the orchestrator needs.
type API interface {
	CreatePaymentOrder(ctx context.Context, sess session.Session, req models.PaymentOrderRequest) (*models.PaymentOrder, error)
	VerifyPayment(ctx context.Context, sess session.Session, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error)
	GetBooking(ctx context.Context, sess session.Session, source models.BookingSource, id string) (models.BookingRecord, error)
}

// Notifier is told when a booking becomes confirmed.
type Notifier interface {
	BookingConfirmed(ctx context.Context, sess session.Session, notice models.BookingNotice) error
}

// AttemptStore persists payment attempts between requests.
type AttemptStore interface {
	Get(ctx context.Context, source models.BookingSource, bookingID string) (*Attempt, error)
	Save(ctx context.Context, a *Attempt) error
	// Lock claims the attempt for one verification; false means it is held.
	Lock(ctx context.Context, source models.BookingSource, bookingID string) (bool, error)
	Unlock(ctx context.Context, source models.BookingSource, bookingID string) error
}
