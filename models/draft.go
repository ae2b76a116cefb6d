package models

// Document is an uploaded identity document held in memory until submission.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"-"`
}

// BookingDraft is the user-entered booking before submission.
// Exactly one of PackageID and ListingID identifies the owning source.
type BookingDraft struct {
	Name             string        `json:"name" validate:"required"`
	Email            string        `json:"email" validate:"required"`
	Phone            string        `json:"phone" validate:"required"`
	CheckIn          Date          `json:"checkIn"`
	CheckOut         Date          `json:"checkOut"`
	Guests           int           `json:"guests" validate:"min=1"`
	IdentityDocument *Document     `json:"identityDocument,omitempty"`
	PaymentMethod    PaymentMethod `json:"paymentMethod" validate:"oneof=pay_at_property online"`
	PackageID        string        `json:"packageId,omitempty"`
	ListingID        string        `json:"listingId,omitempty"`
	HostID           string        `json:"hostId,omitempty"`
	UnitPrice        float64       `json:"unitPrice,omitempty"`
}

// Source reports which catalog the draft books against.
func (d BookingDraft) Source() BookingSource {
	if d.PackageID != "" {
		return SourcePackage
	}
	return SourceHost
}

// AdvisoryAmount is unit price × guests, for display only.
// The server recomputes the authoritative amount.
func (d BookingDraft) AdvisoryAmount() float64 {
	return d.UnitPrice * float64(d.Guests)
}

// PackageBookingRequest is the createPackageBooking payload.
type PackageBookingRequest struct {
	PackageID        string        `json:"packageId"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone"`
	CheckIn          Date          `json:"checkIn"`
	CheckOut         Date          `json:"checkOut"`
	Guests           int           `json:"guests"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	IdentityDocument *Document     `json:"-"`
}

// HostBookingRequest is the createHostBooking payload.
type HostBookingRequest struct {
	ListingID      string        `json:"listingId"`
	HostID         string        `json:"hostId"`
	FullName       string        `json:"fullName"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	CheckIn        Date          `json:"checkIn"`
	CheckOut       Date          `json:"checkOut"`
	Guests         int           `json:"guests"`
	PaymentMode    PaymentMethod `json:"paymentMode"`
	IdentityDocURL string        `json:"identityDocUrl,omitempty"`
}
