package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campstay/config"
	"campstay/cron"
	"campstay/handlers"
	"campstay/middleware"
	"campstay/routes"
	"campstay/services/api"
	"campstay/services/booking"
	"campstay/services/notification"
	"campstay/services/payment"
	"campstay/services/storage"
	"campstay/services/tasks"
	"campstay/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cache := utils.GetCacheClient()
	healthCtx, stopHealth := context.WithCancel(context.Background())
	defer stopHealth()
	utils.StartHealthMonitor(healthCtx, cache, 15*time.Second)

	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout(), logger.Named("api"))

	// Identity documents are optional; without Cloudinary, host bookings
	// carrying a document are refused.
	var uploader booking.DocumentUploader
	if cfg.CloudinaryCloudName != "" {
		store, err := storage.NewCloudinaryStorage(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder, logger.Named("storage"))
		if err != nil {
			logger.Fatal("main: failed to initialize cloudinary storage", zap.Error(err))
		}
		uploader = store
	} else {
		logger.Warn("main: cloudinary not configured, identity uploads disabled")
	}

	// Booking pushes run only when FCM credentials are present.
	var (
		notifier   payment.Notifier
		withdrawer booking.Withdrawer
		queue      *asynq.Client
		inspector  *asynq.Inspector
		worker     *asynq.Server
	)
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := notification.NewMessagingClient(context.Background(), cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("main: failed to initialize firebase messaging", zap.Error(err))
		}
		push := notification.NewFCMPushService(fcm, logger.Named("push"))
		queue = asynq.NewClient(cron.RedisOpt())
		inspector = asynq.NewInspector(cron.RedisOpt())
		enqueuer := tasks.NewEnqueuer(client, queue, logger.Named("tasks")).WithInspector(inspector)
		notifier, withdrawer = enqueuer, enqueuer
		worker = cron.StartWorker(push, logger.Named("worker"))
	} else {
		logger.Warn("main: firebase not configured, booking pushes disabled")
	}

	guard := booking.NewRedisSubmissionGuard(cache, cfg.SubmissionTTL())
	attempts := payment.NewRedisAttemptStore(cache, cfg.PaymentAttemptTTL())

	submission := booking.NewSubmissionClient(client, uploader, guard, logger.Named("submission"))
	aggregator := booking.NewAggregator(client, logger.Named("aggregator")).WithWithdrawer(withdrawer)
	adminSvc := booking.NewAdminService(client, logger.Named("admin")).WithWithdrawer(withdrawer)
	orchestrator := payment.NewOrchestrator(client, attempts, notifier, logger.Named("payment"))

	bookingHandler := handlers.NewBookingHandler(submission, aggregator, orchestrator, client, client, logger)
	paymentHandler := handlers.NewPaymentHandler(orchestrator, client, logger)
	adminHandler := handlers.NewAdminHandler(adminSvc, logger)
	handlerBundle := handlers.NewHandlerBundle(cfg.LoginURL, bookingHandler, paymentHandler, adminHandler)

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies()); err != nil {
		logger.Fatal("main: invalid trusted proxies", zap.Error(err))
	}
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(routes.CORSMiddleware(cfg.AllowedOrigins()))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("main: starting server", zap.String("addr", srv.Addr), zap.String("api", client.BaseURL()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queue != nil {
		if err := queue.Close(); err != nil {
			logger.Warn("main: task queue close failed", zap.Error(err))
		}
	}
	if inspector != nil {
		if err := inspector.Close(); err != nil {
			logger.Warn("main: task inspector close failed", zap.Error(err))
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warn("main: redis close failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
