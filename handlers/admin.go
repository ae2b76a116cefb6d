package handlers

import (
	"net/http"

	"campstay/models"
	"campstay/services/booking"
	"campstay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the administrator approval endpoints.
type AdminHandler struct {
	admin  *booking.AdminService
	logger *zap.Logger
}

func NewAdminHandler(admin *booking.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// ListBookingsHandler returns every booking of both sources.
func (h *AdminHandler) ListBookingsHandler(c *gin.Context) {
	views, err := h.admin.ListAll(c.Request.Context(), requestSession(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": views})
}

func (h *AdminHandler) AcceptBookingHandler(c *gin.Context) {
	h.decide(c, booking.DecisionAccept)
}

func (h *AdminHandler) RejectBookingHandler(c *gin.Context) {
	h.decide(c, booking.DecisionReject)
}

func (h *AdminHandler) decide(c *gin.Context, d booking.Decision) {
	source, err := models.ParseSource(c.Param("source"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking source", err.Error())
		return
	}
	id := c.Param("id")
	if err := h.admin.Decide(c.Request.Context(), requestSession(c), source, id, d); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId": id,
		"source":    source,
		"status":    d.Target(),
	})
}
