package models

// BookingNotice is the payload of queued booking notifications.
type BookingNotice struct {
	BookingID     string        `json:"bookingId"`
	Source        BookingSource `json:"source"`
	UserID        string        `json:"userId"`
	DeviceToken   string        `json:"deviceToken"`
	Title         string        `json:"title,omitempty"`
	CheckIn       Date          `json:"checkIn"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}
