package models

// PaymentOrderRequest asks the server to open a payment-provider order.
type PaymentOrderRequest struct {
	BookingID string        `json:"bookingId"`
	Source    BookingSource `json:"source"`
	Amount    float64       `json:"amount"`
}

// PaymentOrder is the provider order returned by the server.
type PaymentOrder struct {
	OrderID  string  `json:"orderId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// PaymentProof holds the opaque fields of the provider callback. It is
// untrusted until the server verifies it.
type PaymentProof struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// VerifyPaymentRequest is the verifyPayment payload.
type VerifyPaymentRequest struct {
	BookingID string        `json:"bookingId"`
	Source    BookingSource `json:"source"`
	OrderID   string        `json:"orderId"`
	PaymentID string        `json:"paymentId"`
	Signature string        `json:"signature"`
}

// VerifyPaymentResult is the server's verdict on a payment proof.
type VerifyPaymentResult struct {
	Verified bool `json:"verified"`
}
