package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	LoginURL string

	// Health
	HealthHandler gin.HandlerFunc

	// Booking endpoints
	GetDraftHandler      gin.HandlerFunc
	SubmitBookingHandler gin.HandlerFunc
	ListBookingsHandler  gin.HandlerFunc
	CancelBookingHandler gin.HandlerFunc
	InvoiceHandler       gin.HandlerFunc

	// Payment endpoints
	BeginPaymentHandler   gin.HandlerFunc
	VerifyPaymentHandler  gin.HandlerFunc
	AbandonPaymentHandler gin.HandlerFunc
	RetryPaymentHandler   gin.HandlerFunc
	PaymentStatusHandler  gin.HandlerFunc

	// Admin endpoints
	AdminListBookingsHandler  gin.HandlerFunc
	AdminAcceptBookingHandler gin.HandlerFunc
	AdminRejectBookingHandler gin.HandlerFunc
}

// NewHandlerBundle assembles the bundle from the per-area handlers.
func NewHandlerBundle(loginURL string, bh *BookingHandler, ph *PaymentHandler, ah *AdminHandler) *HandlerBundle {
	return &HandlerBundle{
		LoginURL:      loginURL,
		HealthHandler: HealthHandler,

		GetDraftHandler:      bh.GetDraftHandler,
		SubmitBookingHandler: bh.SubmitBookingHandler,
		ListBookingsHandler:  bh.ListBookingsHandler,
		CancelBookingHandler: bh.CancelBookingHandler,
		InvoiceHandler:       bh.InvoiceHandler,

		BeginPaymentHandler:   ph.BeginPaymentHandler,
		VerifyPaymentHandler:  ph.VerifyPaymentHandler,
		AbandonPaymentHandler: ph.AbandonPaymentHandler,
		RetryPaymentHandler:   ph.RetryPaymentHandler,
		PaymentStatusHandler:  ph.PaymentStatusHandler,

		AdminListBookingsHandler:  ah.ListBookingsHandler,
		AdminAcceptBookingHandler: ah.AcceptBookingHandler,
		AdminRejectBookingHandler: ah.RejectBookingHandler,
	}
}
