package booking

import (
	"context"

	"campstay/models"
	"campstay/services/session"
)

// SubmissionAPI creates bookings on the marketplace API.
type SubmissionAPI interface {
	CreatePackageBooking(ctx context.Context, sess session.Session, req models.PackageBookingRequest) (*models.PackageBooking, error)
	CreateHostBooking(ctx context.Context, sess session.Session, req models.HostBookingRequest) (*models.HostBooking, error)
}

// SourceAPI reads and cancels bookings of both sources.
type SourceAPI interface {
	UserPackageBookings(ctx context.Context, sess session.Session, userID string) ([]models.PackageBooking, error)
	UserHostBookings(ctx context.Context, sess session.Session, userID string) ([]models.HostBooking, error)
	GetBooking(ctx context.Context, sess session.Session, source models.BookingSource, id string) (models.BookingRecord, error)
	CancelBooking(ctx context.Context, sess session.Session, source models.BookingSource, id string) error
}

// AdminAPI exposes the administrator booking endpoints.
type AdminAPI interface {
	AdminPackageBookings(ctx context.Context, sess session.Session) ([]models.PackageBooking, error)
	AdminHostBookings(ctx context.Context, sess session.Session) ([]models.HostBooking, error)
	GetBooking(ctx context.Context, sess session.Session, source models.BookingSource, id string) (models.BookingRecord, error)
	UpdateBookingStatus(ctx context.Context, sess session.Session, source models.BookingSource, id string, status models.BookingStatus) error
}

// DocumentUploader stores an identity document and returns its public URL.
type DocumentUploader interface {
	UploadIdentityDocument(ctx context.Context, doc models.Document) (string, error)
}

// SubmissionGuard enforces at-most-once submission per idempotency key.
type SubmissionGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Withdrawer drops scheduled notices of a booking that will not take place.
type Withdrawer interface {
	BookingWithdrawn(ctx context.Context, source models.BookingSource, id string) error
}
