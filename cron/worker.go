package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campstay/config"
	"campstay/models"
	"campstay/services/notification"
	"campstay/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewMux routes booking tasks to push handlers.
func NewMux(push notification.PushService, logger *zap.Logger) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingConfirmed, handleBookingTask(push, notification.BookingConfirmedMessage, logger))
	mux.HandleFunc(tasks.TypeStayReminder, handleBookingTask(push, notification.StayReminderMessage, logger))
	return mux
}

// RedisOpt returns the queue connection settings.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// StartWorker starts the booking worker in the background. The caller owns
// shutdown of the returned server.
func StartWorker(push notification.PushService, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues:      map[string]int{tasks.DefaultQueue: 1},
		},
	)
	mux := NewMux(push, logger)

	go func() {
		logger.Info("starting booking worker")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Error("booking worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("booking worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleBookingTask(push notification.PushService, render func(models.BookingNotice) notification.Message, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		n, err := tasks.ParseNotice(t)
		if err != nil {
			logger.Error("invalid booking task payload", zap.String("type", t.Type()), zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		err = push.Push(ctx, n.DeviceToken, render(n))
		if errors.Is(err, notification.ErrNoDeviceToken) {
			logger.Warn("booking task without device token", zap.String("bookingId", n.BookingID))
			return nil
		}
		if err != nil {
			logger.Error("booking push failed", zap.String("type", t.Type()), zap.String("bookingId", n.BookingID), zap.Error(err))
			return err
		}
		logger.Info("booking push delivered", zap.String("type", t.Type()), zap.String("bookingId", n.BookingID))
		return nil
	}
}
