package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"campstay/models"
	"campstay/services/booking"
	"campstay/services/payment"
	"campstay/services/session"
	"campstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadBytes caps the identity document read from a multipart form.
const maxUploadBytes = 10 << 20

// ProfileReader loads the profile used to prefill drafts.
type ProfileReader interface {
	GetProfile(ctx context.Context, sess session.Session, userID string) (*models.UserProfile, error)
}

// InvoiceLinker builds invoice link-out URLs.
type InvoiceLinker interface {
	InvoiceURL(bookingID string) string
}

// BookingHandler serves the customer booking endpoints.
type BookingHandler struct {
	submission *booking.SubmissionClient
	aggregator *booking.Aggregator
	payments   *payment.Orchestrator
	profiles   ProfileReader
	invoices   InvoiceLinker
	logger     *zap.Logger
}

func NewBookingHandler(
	submission *booking.SubmissionClient,
	aggregator *booking.Aggregator,
	payments *payment.Orchestrator,
	profiles ProfileReader,
	invoices InvoiceLinker,
	logger *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		submission: submission,
		aggregator: aggregator,
		payments:   payments,
		profiles:   profiles,
		invoices:   invoices,
		logger:     logger,
	}
}

// draftInput is the submit body, either JSON or a multipart form with an
// optional "idProof" file.
type draftInput struct {
	Name          string  `json:"name" form:"name"`
	Email         string  `json:"email" form:"email"`
	Phone         string  `json:"phone" form:"phone"`
	CheckIn       string  `json:"checkIn" form:"checkIn"`
	CheckOut      string  `json:"checkOut" form:"checkOut"`
	Guests        int     `json:"guests" form:"guests"`
	PaymentMethod string  `json:"paymentMethod" form:"paymentMethod"`
	PackageID     string  `json:"packageId" form:"packageId"`
	ListingID     string  `json:"listingId" form:"listingId"`
	HostID        string  `json:"hostId" form:"hostId"`
	UnitPrice     float64 `json:"unitPrice" form:"unitPrice"`
}

// GetDraftHandler returns an empty draft prefilled from the user's profile.
func (h *BookingHandler) GetDraftHandler(c *gin.Context) {
	logger := getLogger(c)
	sess := requestSession(c)
	if err := session.Require(sess); err != nil {
		respondError(c, err)
		return
	}

	var profile *models.UserProfile
	if h.profiles != nil {
		p, err := h.profiles.GetProfile(c.Request.Context(), sess, sess.UserID())
		if err != nil {
			logger.Warn("profile prefill unavailable", zap.String("userId", sess.UserID()), zap.Error(err))
		} else {
			profile = p
		}
	}

	b := booking.NewDraftBuilder(profile).
		SetListingRefs(c.Query("packageId"), c.Query("listingId"), c.Query("hostId"))
	c.JSON(http.StatusOK, gin.H{"draft": b.Draft()})
}

// SubmitBookingHandler validates the draft, creates the booking and starts
// its payment flow. A failed payment start does not undo the booking; the
// response carries the failed attempt so the client can retry.
func (h *BookingHandler) SubmitBookingHandler(c *gin.Context) {
	logger := getLogger(c)
	sess := requestSession(c)
	if err := session.Require(sess); err != nil {
		respondError(c, err)
		return
	}

	var in draftInput
	if err := c.ShouldBind(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking request", err.Error())
		return
	}
	doc, err := readIdentityDocument(c)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid identity document", err.Error())
		return
	}

	b := booking.NewDraftBuilder(nil).
		SetName(in.Name).
		SetEmail(in.Email).
		SetPhone(in.Phone).
		SetDates(in.CheckIn, in.CheckOut).
		SetGuests(in.Guests).
		SetPaymentMethod(in.PaymentMethod).
		SetUnitPrice(in.UnitPrice).
		SetListingRefs(in.PackageID, in.ListingID, in.HostID).
		SetIdentityDocument(doc)
	draft, err := b.Validate()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	created, err := h.submission.Submit(ctx, sess, c.GetHeader("Idempotency-Key"), draft)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"booking": created}
	attempt, err := h.payments.Begin(ctx, sess, *created, draft.UnitPrice)
	if attempt != nil {
		resp["payment"] = attempt
	}
	if err != nil {
		logger.Warn("payment start failed after booking creation", zap.String("bookingId", created.ID), zap.Error(err))
		resp["paymentError"] = err.Error()
		resp["retry"] = true
	}
	c.JSON(http.StatusCreated, resp)
}

// ListBookingsHandler returns the caller's bookings from both sources.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	sess := requestSession(c)
	if err := session.Require(sess); err != nil {
		respondError(c, err)
		return
	}
	views, err := h.aggregator.LoadForUser(c.Request.Context(), sess, sess.UserID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

// CancelBookingHandler cancels one booking when the customer rule allows it.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	sess := requestSession(c)
	source, err := models.ParseSource(c.Param("source"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking source", err.Error())
		return
	}
	id := c.Param("id")
	if err := h.aggregator.Cancel(c.Request.Context(), sess, source, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled", "bookingId": id})
}

// InvoiceHandler redirects to the invoice document on the marketplace API.
func (h *BookingHandler) InvoiceHandler(c *gin.Context) {
	id := c.Param("bookingId")
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "Booking ID is required", "")
		return
	}
	c.Redirect(http.StatusFound, h.invoices.InvoiceURL(id))
}

// readIdentityDocument returns the optional "idProof" upload, nil when absent.
func readIdentityDocument(c *gin.Context) (*models.Document, error) {
	fh, err := c.FormFile("idProof")
	if err == http.ErrMissingFile || err == http.ErrNotMultipart {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if fh.Size > maxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxUploadBytes)
	}
	content, err := readFormFile(fh)
	if err != nil {
		return nil, err
	}
	return &models.Document{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
}
