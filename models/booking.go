package models

import (
	"fmt"
	"strings"
	"time"
)

// BookingSource tells which catalog owns a booking.
type BookingSource string

const (
	SourcePackage BookingSource = "package" // platform-curated package
	SourceHost    BookingSource = "host"    // independently hosted listing
)

// ParseSource validates a source discriminator taken from a path or payload.
func ParseSource(s string) (BookingSource, error) {
	switch BookingSource(strings.ToLower(strings.TrimSpace(s))) {
	case SourcePackage:
		return SourcePackage, nil
	case SourceHost:
		return SourceHost, nil
	}
	return "", fmt.Errorf("unknown booking source %q", s)
}

// BookingStatus is the canonical booking status vocabulary.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks collection of the booking amount.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentMethod is how the guest intends to pay.
type PaymentMethod string

const (
	PayAtProperty PaymentMethod = "pay_at_property"
	PayOnline     PaymentMethod = "online"
)

// ParsePaymentMethod accepts the short form "property" used by the booking forms.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pay_at_property", "property", "cash":
		return PayAtProperty, nil
	case "online", "razorpay", "card":
		return PayOnline, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Contact is the requester's contact block.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking is the client's view of a server-owned booking record.
// Exactly one of PackageID and ListingID is set.
type Booking struct {
	ID             string        `json:"id"`
	Source         BookingSource `json:"source"`
	PackageID      string        `json:"packageId,omitempty"`
	ListingID      string        `json:"listingId,omitempty"`
	HostID         string        `json:"hostId,omitempty"`
	UserID         string        `json:"userId,omitempty"`
	Title          string        `json:"title,omitempty"`
	Contact        Contact       `json:"contact"`
	CheckIn        Date          `json:"checkIn"`
	CheckOut       Date          `json:"checkOut"`
	Guests         int           `json:"guests"`
	Amount         float64       `json:"amount"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  PaymentStatus `json:"paymentStatus"`
	PaymentMethod  PaymentMethod `json:"paymentMethod"`
	IdentityDocURL string        `json:"identityDocUrl,omitempty"`
	CreatedAt      *time.Time    `json:"createdAt,omitempty"`
}

// ListingRef returns whichever listing reference the booking carries.
func (b Booking) ListingRef() string {
	if b.PackageID != "" {
		return b.PackageID
	}
	return b.ListingID
}

// EffectiveTime orders bookings: creation time, or check-in when creation time is absent.
func (b Booking) EffectiveTime() time.Time {
	if b.CreatedAt != nil && !b.CreatedAt.IsZero() {
		return *b.CreatedAt
	}
	return b.CheckIn.Time
}

// UnifiedBookingView is the display projection shared by both sources.
type UnifiedBookingView struct {
	Booking
	FinalStatus BookingStatus `json:"finalStatus"`
	Cancellable bool          `json:"cancellable"`
}
