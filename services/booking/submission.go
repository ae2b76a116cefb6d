package booking

import (
	"context"
	"errors"
	"fmt"

	"campstay/models"
	"campstay/services/api"
	"campstay/services/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmissionClient sends validated drafts to the endpoint of their source.
// It never retries on its own.
type SubmissionClient struct {
	api      SubmissionAPI
	uploader DocumentUploader
	guard    SubmissionGuard
	logger   *zap.Logger
}

// NewSubmissionClient wires a SubmissionClient. uploader may be nil when
// host bookings never carry identity documents.
func NewSubmissionClient(a SubmissionAPI, uploader DocumentUploader, guard SubmissionGuard, logger *zap.Logger) *SubmissionClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = NewMemorySubmissionGuard()
	}
	return &SubmissionClient{api: a, uploader: uploader, guard: guard, logger: logger}
}

// NewIdempotencyKey returns a fresh key for one user action.
func NewIdempotencyKey() string {
	return uuid.New().String()
}

// Submit creates the booking described by draft. key identifies the user
// action; a key that was already used fails with ErrDuplicateSubmission
// without contacting the server. An empty key gets a fresh one.
func (c *SubmissionClient) Submit(ctx context.Context, sess session.Session, key string, draft models.BookingDraft) (*models.Booking, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	if key == "" {
		key = NewIdempotencyKey()
	}
	// keys are per user; two users never share an action
	key = sess.UserID() + ":" + key

	claimed, err := c.guard.Claim(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("claim submission key: %w", err)
	}
	if !claimed {
		c.logger.Warn("duplicate booking submission blocked", zap.String("key", key))
		return nil, ErrDuplicateSubmission
	}

	var record models.BookingRecord
	switch draft.Source() {
	case models.SourcePackage:
		record, err = c.submitPackage(ctx, sess, draft)
	default:
		record, err = c.submitHost(ctx, sess, draft)
	}
	if err != nil {
		c.releaseIfUnsent(ctx, key, err)
		return nil, err
	}

	view, err := record.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedBookingState, err)
	}
	booking := view.Booking
	if err := checkCreated(&booking, draft.PaymentMethod); err != nil {
		c.logger.Error("created booking breaks creation contract",
			zap.String("bookingId", booking.ID),
			zap.String("status", string(booking.Status)),
			zap.String("paymentStatus", string(booking.PaymentStatus)))
		return nil, err
	}

	c.logger.Info("booking submitted",
		zap.String("bookingId", booking.ID),
		zap.String("source", string(booking.Source)),
		zap.String("paymentMethod", string(booking.PaymentMethod)))
	return &booking, nil
}

func (c *SubmissionClient) submitPackage(ctx context.Context, sess session.Session, d models.BookingDraft) (models.BookingRecord, error) {
	rec, err := c.api.CreatePackageBooking(ctx, sess, models.PackageBookingRequest{
		PackageID:        d.PackageID,
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		CheckIn:          d.CheckIn,
		CheckOut:         d.CheckOut,
		Guests:           d.Guests,
		PaymentMethod:    d.PaymentMethod,
		IdentityDocument: d.IdentityDocument,
	})
	if err != nil {
		return nil, err
	}
	return *rec, nil
}

func (c *SubmissionClient) submitHost(ctx context.Context, sess session.Session, d models.BookingDraft) (models.BookingRecord, error) {
	var docURL string
	if d.IdentityDocument != nil {
		if c.uploader == nil {
			return nil, errors.New("identity document upload is not configured")
		}
		url, err := c.uploader.UploadIdentityDocument(ctx, *d.IdentityDocument)
		if err != nil {
			return nil, fmt.Errorf("upload identity document: %w", err)
		}
		docURL = url
	}

	rec, err := c.api.CreateHostBooking(ctx, sess, models.HostBookingRequest{
		ListingID:      d.ListingID,
		HostID:         d.HostID,
		FullName:       d.Name,
		Email:          d.Email,
		Phone:          d.Phone,
		CheckIn:        d.CheckIn,
		CheckOut:       d.CheckOut,
		Guests:         d.Guests,
		PaymentMode:    d.PaymentMethod,
		IdentityDocURL: docURL,
	})
	if err != nil {
		return nil, err
	}
	return *rec, nil
}

// releaseIfUnsent frees the key when the server cannot have created a
// booking: the request never left, or the server refused it outright.
// Network failures and 5xx keep the key claimed.
func (c *SubmissionClient) releaseIfUnsent(ctx context.Context, key string, cause error) {
	var te *api.TransportError
	if errors.As(cause, &te) && !te.Rejected() {
		return
	}
	if err := c.guard.Release(ctx, key); err != nil {
		c.logger.Warn("failed to release submission key", zap.String("key", key), zap.Error(err))
	}
}

// checkCreated fills the defaults of a fresh booking and rejects states the
// creation contract forbids.
func checkCreated(b *models.Booking, method models.PaymentMethod) error {
	if b.PaymentMethod == "" {
		b.PaymentMethod = method
	}
	if b.Status != models.StatusPending {
		return fmt.Errorf("%w: status %q", ErrUnexpectedBookingState, b.Status)
	}
	switch b.PaymentStatus {
	case models.PaymentPaid:
		return fmt.Errorf("%w: payment status %q before verification", ErrUnexpectedBookingState, b.PaymentStatus)
	case models.PaymentUnpaid:
		if b.PaymentMethod == models.PayOnline {
			b.PaymentStatus = models.PaymentPending
		}
	}
	if b.PaymentMethod == models.PayAtProperty {
		b.PaymentStatus = models.PaymentUnpaid
	}
	return nil
}
