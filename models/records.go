package models

import (
	"fmt"
	"strings"
	"time"
)

// BookingRecord is a booking as returned by one of the two booking sources.
// The concrete types are PackageBooking and HostBooking; each knows how to
// normalise its own field names into the canonical Booking shape.
type BookingRecord interface {
	Source() BookingSource
	Normalize() (UnifiedBookingView, error)
	isBookingRecord()
}

// PackageBooking is the wire shape of a package-sourced booking.
// Its status lives in "status".
type PackageBooking struct {
	ID            string     `json:"id"`
	PackageID     string     `json:"packageId"`
	UserID        string     `json:"userId,omitempty"`
	PackageTitle  string     `json:"packageTitle,omitempty"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	CheckIn       Date       `json:"checkIn"`
	CheckOut      Date       `json:"checkOut"`
	Guests        int        `json:"guests"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus"`
	PaymentMethod string     `json:"paymentMethod"`
	IDProof       string     `json:"idProof,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// HostBooking is the wire shape of a host-listing booking.
// Its status lives in "bookingStatus" and its payment method in "paymentMode".
type HostBooking struct {
	ID             string     `json:"id"`
	ListingID      string     `json:"listingId"`
	HostID         string     `json:"hostId"`
	UserID         string     `json:"userId,omitempty"`
	ListingTitle   string     `json:"listingTitle,omitempty"`
	FullName       string     `json:"fullName"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	CheckIn        Date       `json:"checkIn"`
	CheckOut       Date       `json:"checkOut"`
	Guests         int        `json:"guests"`
	TotalAmount    float64    `json:"totalAmount"`
	BookingStatus  string     `json:"bookingStatus"`
	PaymentStatus  string     `json:"paymentStatus"`
	PaymentMode    string     `json:"paymentMode"`
	IdentityDocURL string     `json:"identityDocUrl,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

func (PackageBooking) Source() BookingSource { return SourcePackage }
func (HostBooking) Source() BookingSource    { return SourceHost }

func (PackageBooking) isBookingRecord() {}
func (HostBooking) isBookingRecord()    {}

// Normalize maps the package record into the canonical view.
func (p PackageBooking) Normalize() (UnifiedBookingView, error) {
	if p.PackageID == "" {
		return UnifiedBookingView{}, fmt.Errorf("package booking %s: missing packageId", p.ID)
	}
	status, err := ParseBookingStatus(p.Status)
	if err != nil {
		return UnifiedBookingView{}, fmt.Errorf("package booking %s: %w", p.ID, err)
	}
	payStatus, err := ParsePaymentStatus(p.PaymentStatus)
	if err != nil {
		return UnifiedBookingView{}, fmt.Errorf("package booking %s: %w", p.ID, err)
	}
	method, _ := ParsePaymentMethod(p.PaymentMethod)
	b := Booking{
		ID:             p.ID,
		Source:         SourcePackage,
		PackageID:      p.PackageID,
		UserID:         p.UserID,
		Title:          p.PackageTitle,
		Contact:        Contact{Name: p.Name, Email: p.Email, Phone: p.Phone},
		CheckIn:        p.CheckIn,
		CheckOut:       p.CheckOut,
		Guests:         p.Guests,
		Amount:         p.Amount,
		Status:         status,
		PaymentStatus:  payStatus,
		PaymentMethod:  method,
		IdentityDocURL: p.IDProof,
		CreatedAt:      p.CreatedAt,
	}
	return UnifiedBookingView{Booking: b, FinalStatus: status}, nil
}

// Normalize maps the host record into the canonical view.
func (h HostBooking) Normalize() (UnifiedBookingView, error) {
	if h.ListingID == "" {
		return UnifiedBookingView{}, fmt.Errorf("host booking %s: missing listingId", h.ID)
	}
	status, err := ParseBookingStatus(h.BookingStatus)
	if err != nil {
		return UnifiedBookingView{}, fmt.Errorf("host booking %s: %w", h.ID, err)
	}
	payStatus, err := ParsePaymentStatus(h.PaymentStatus)
	if err != nil {
		return UnifiedBookingView{}, fmt.Errorf("host booking %s: %w", h.ID, err)
	}
	method, _ := ParsePaymentMethod(h.PaymentMode)
	b := Booking{
		ID:             h.ID,
		Source:         SourceHost,
		ListingID:      h.ListingID,
		HostID:         h.HostID,
		UserID:         h.UserID,
		Title:          h.ListingTitle,
		Contact:        Contact{Name: h.FullName, Email: h.Email, Phone: h.Phone},
		CheckIn:        h.CheckIn,
		CheckOut:       h.CheckOut,
		Guests:         h.Guests,
		Amount:         h.TotalAmount,
		Status:         status,
		PaymentStatus:  payStatus,
		PaymentMethod:  method,
		IdentityDocURL: h.IdentityDocURL,
		CreatedAt:      h.CreatedAt,
	}
	return UnifiedBookingView{Booking: b, FinalStatus: status}, nil
}

// ParseBookingStatus maps a raw source status onto the canonical set.
// An empty status is a freshly created booking.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pending":
		return StatusPending, nil
	case "accepted":
		return StatusAccepted, nil
	case "rejected":
		return StatusRejected, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("unknown booking status %q", raw)
}

// ParsePaymentStatus maps a raw payment status; empty means nothing was collected yet.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "unpaid":
		return PaymentUnpaid, nil
	case "pending":
		return PaymentPending, nil
	case "paid":
		return PaymentPaid, nil
	}
	return "", fmt.Errorf("unknown payment status %q", raw)
}
