package handlers

import (
	"errors"
	"net/http"

	"campstay/config"
	"campstay/middleware"
	"campstay/services/api"
	"campstay/services/booking"
	"campstay/services/payment"
	"campstay/services/session"
	"campstay/services/storage"
	"campstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		validation *booking.ValidationError
		aggregate  *booking.AggregateLoadError
		transition *payment.TransitionError
		transport  *api.TransportError
	)

	switch {
	case errors.As(err, &validation):
		utils.JSONErrorBody(c, http.StatusUnprocessableEntity, utils.ErrorResponse{
			Message: "Please correct the highlighted fields",
			Code:    validation.Code,
			Fields:  validation.Fields,
		})
	case errors.Is(err, session.ErrNoSession), upstreamUnauthorized(err):
		utils.JSONErrorBody(c, http.StatusUnauthorized, utils.ErrorResponse{
			Message: "Authentication required",
			Code:    "sessionRequired",
			Login:   config.AppConfig.LoginURL,
		})
	case errors.Is(err, booking.ErrDuplicateSubmission):
		utils.JSONErrorBody(c, http.StatusConflict, utils.ErrorResponse{
			Message: err.Error(),
			Code:    "duplicateSubmission",
		})
	case errors.Is(err, payment.ErrVerificationRejected):
		utils.JSONErrorBody(c, http.StatusPaymentRequired, utils.ErrorResponse{
			Message: "Payment could not be verified",
			Code:    "verificationRejected",
			Retry:   true,
		})
	case errors.Is(err, payment.ErrAlreadyPaid):
		utils.JSONErrorBody(c, http.StatusConflict, utils.ErrorResponse{
			Message: err.Error(),
			Code:    "alreadyPaid",
		})
	case errors.Is(err, payment.ErrBookingNotPayable):
		utils.JSONErrorBody(c, http.StatusConflict, utils.ErrorResponse{
			Message: "This booking can no longer be paid",
			Code:    "bookingNotPayable",
		})
	case errors.Is(err, payment.ErrVerificationInProgress):
		utils.JSONErrorBody(c, http.StatusConflict, utils.ErrorResponse{
			Message: err.Error(),
			Code:    "verificationInProgress",
			Retry:   true,
		})
	case errors.Is(err, payment.ErrAttemptNotFound):
		utils.JSONError(c, http.StatusNotFound, "No payment in progress for this booking", "")
	case errors.As(err, &transition):
		utils.JSONErrorBody(c, http.StatusConflict, utils.ErrorResponse{
			Message: "Payment is not in a state that allows this action",
			Details: err.Error(),
			Code:    transition.Code,
		})
	case errors.Is(err, booking.ErrNotCancellable):
		utils.JSONErrorBody(c, http.StatusConflict, utils.ErrorResponse{
			Message: err.Error(),
			Code:    "notCancellable",
		})
	case errors.Is(err, booking.ErrTransitionNotAllowed):
		utils.JSONErrorBody(c, http.StatusConflict, utils.ErrorResponse{
			Message: "Only pending bookings can be accepted or rejected",
			Details: err.Error(),
			Code:    "transitionNotAllowed",
		})
	case errors.Is(err, booking.ErrUnexpectedBookingState):
		utils.JSONErrorBody(c, http.StatusBadGateway, utils.ErrorResponse{
			Message: "Booking service returned an unexpected booking",
			Details: err.Error(),
			Code:    "unexpectedBookingState",
		})
	case errors.Is(err, storage.ErrUnsupportedDocument):
		utils.JSONErrorBody(c, http.StatusUnprocessableEntity, utils.ErrorResponse{
			Message: "Identity document not accepted",
			Details: err.Error(),
			Code:    "invalidDocument",
		})
	case errors.As(err, &aggregate):
		utils.JSONErrorBody(c, http.StatusBadGateway, utils.ErrorResponse{
			Message: aggregate.Message,
			Code:    aggregate.Code,
			Retry:   true,
		})
	case errors.As(err, &transport):
		status := http.StatusBadGateway
		if transport.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		utils.JSONErrorBody(c, status, utils.ErrorResponse{
			Message: "Booking service request failed",
			Details: transport.Message,
			Code:    "transportError",
			Retry:   !transport.Rejected(),
		})
	default:
		getLogger(c).Error("unhandled error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

// upstreamUnauthorized reports a booking service 401, meaning the token expired or was revoked.
func upstreamUnauthorized(err error) bool {
	var transport *api.TransportError
	return errors.As(err, &transport) && transport.StatusCode == http.StatusUnauthorized
}

// requestSession returns the caller's session, nil when the route is unauthenticated.
func requestSession(c *gin.Context) session.Session {
	if sess := middleware.GetSession(c); sess != nil {
		return sess
	}
	return nil
}
