package routes

import (
	"time"

	"campstay/handlers"
	"campstay/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/health", hb.HealthHandler)
}

// RegisterBookingRoutes registers the customer booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	api.Use(middleware.SessionAuthMiddleware(hb.LoginURL))
	{
		api.GET("/bookings/draft", hb.GetDraftHandler)
		api.POST("/bookings", hb.SubmitBookingHandler)
		api.GET("/bookings", hb.ListBookingsHandler)
		api.PUT("/bookings/:source/:id/cancel", hb.CancelBookingHandler)
		api.GET("/invoices/:bookingId", hb.InvoiceHandler)
	}
}

// RegisterPaymentRoutes registers the payment flow endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments/:source/:bookingId")
	api.Use(middleware.SessionAuthMiddleware(hb.LoginURL))
	{
		api.GET("", hb.PaymentStatusHandler)
		api.POST("/begin", hb.BeginPaymentHandler)
		api.POST("/verify", hb.VerifyPaymentHandler)
		api.POST("/abandon", hb.AbandonPaymentHandler)
		api.POST("/retry", hb.RetryPaymentHandler)
	}
}

// RegisterAdminRoutes registers the administrator endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	admin := r.Group("/api/admin")
	admin.Use(middleware.SessionAuthMiddleware(hb.LoginURL), middleware.AdminOnlyMiddleware())
	{
		admin.GET("/bookings", hb.AdminListBookingsHandler)
		admin.PUT("/bookings/:source/:id/accept", hb.AdminAcceptBookingHandler)
		admin.PUT("/bookings/:source/:id/reject", hb.AdminRejectBookingHandler)
	}
}

// CORSMiddleware allows the configured front-end origins.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RegisterRoutes registers every route group on r.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
