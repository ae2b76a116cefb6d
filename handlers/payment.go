package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"campstay/models"
	"campstay/services/booking"
	"campstay/services/payment"
	"campstay/services/session"
	"campstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingReader re-reads a booking before a payment flow starts.
type BookingReader interface {
	GetBooking(ctx context.Context, sess session.Session, source models.BookingSource, id string) (models.BookingRecord, error)
}

// PaymentHandler exposes the payment state machine of a booking.
type PaymentHandler struct {
	payments *payment.Orchestrator
	bookings BookingReader
	logger   *zap.Logger
}

func NewPaymentHandler(payments *payment.Orchestrator, bookings BookingReader, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, bookings: bookings, logger: logger}
}

type beginInput struct {
	UnitPrice float64 `json:"unitPrice"`
}

func paymentTarget(c *gin.Context) (models.BookingSource, string, bool) {
	source, err := models.ParseSource(c.Param("source"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking source", err.Error())
		return "", "", false
	}
	return source, c.Param("bookingId"), true
}

func attemptResponse(a *payment.Attempt) gin.H {
	return gin.H{
		"payment":       a,
		"paymentStatus": a.PaymentStatus(),
		"confirmed":     a.Confirmed(),
		"retry":         a.Retryable(),
	}
}

// BeginPaymentHandler starts the flow for an existing booking.
func (h *PaymentHandler) BeginPaymentHandler(c *gin.Context) {
	sess := requestSession(c)
	if err := session.Require(sess); err != nil {
		respondError(c, err)
		return
	}
	source, id, ok := paymentTarget(c)
	if !ok {
		return
	}
	var in beginInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&in); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid payment request", err.Error())
			return
		}
	}

	ctx := c.Request.Context()
	record, err := h.bookings.GetBooking(ctx, sess, source, id)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := record.Normalize()
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", booking.ErrUnexpectedBookingState, err))
		return
	}
	if view.UserID != "" && view.UserID != sess.UserID() {
		utils.JSONError(c, http.StatusForbidden, "Booking belongs to another user", "")
		return
	}

	attempt, err := h.payments.Begin(ctx, sess, view.Booking, in.UnitPrice)
	if err != nil && attempt == nil {
		respondError(c, err)
		return
	}
	resp := attemptResponse(attempt)
	if err != nil {
		getLogger(c).Warn("payment order failed", zap.String("bookingId", id), zap.Error(err))
		resp["paymentError"] = err.Error()
		c.JSON(http.StatusBadGateway, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyPaymentHandler submits the provider callback proof for verification.
func (h *PaymentHandler) VerifyPaymentHandler(c *gin.Context) {
	sess := requestSession(c)
	source, id, ok := paymentTarget(c)
	if !ok {
		return
	}
	var proof models.PaymentProof
	if err := c.ShouldBindJSON(&proof); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid payment proof", err.Error())
		return
	}

	attempt, err := h.payments.Confirm(c.Request.Context(), sess, source, id, proof)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attemptResponse(attempt))
}

// AbandonPaymentHandler records that the user left the provider UI.
func (h *PaymentHandler) AbandonPaymentHandler(c *gin.Context) {
	sess := requestSession(c)
	if err := session.Require(sess); err != nil {
		respondError(c, err)
		return
	}
	source, id, ok := paymentTarget(c)
	if !ok {
		return
	}
	attempt, err := h.payments.Abandon(c.Request.Context(), sess, source, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attemptResponse(attempt))
}

// RetryPaymentHandler requests a fresh order for a failed attempt.
func (h *PaymentHandler) RetryPaymentHandler(c *gin.Context) {
	sess := requestSession(c)
	source, id, ok := paymentTarget(c)
	if !ok {
		return
	}
	attempt, err := h.payments.Retry(c.Request.Context(), sess, source, id)
	if err != nil && attempt == nil {
		respondError(c, err)
		return
	}
	if err != nil {
		var transition *payment.TransitionError
		if errors.As(err, &transition) {
			respondError(c, err)
			return
		}
		resp := attemptResponse(attempt)
		resp["paymentError"] = err.Error()
		c.JSON(http.StatusBadGateway, resp)
		return
	}
	c.JSON(http.StatusOK, attemptResponse(attempt))
}

// PaymentStatusHandler returns the caller's stored attempt.
func (h *PaymentHandler) PaymentStatusHandler(c *gin.Context) {
	sess := requestSession(c)
	if err := session.Require(sess); err != nil {
		respondError(c, err)
		return
	}
	source, id, ok := paymentTarget(c)
	if !ok {
		return
	}
	attempt, err := h.payments.Status(c.Request.Context(), sess, source, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, attemptResponse(attempt))
}
