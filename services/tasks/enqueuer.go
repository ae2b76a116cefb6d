package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campstay/models"
	"campstay/services/session"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ProfileFetcher resolves the device token of a booking's owner.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, sess session.Session, userID string) (*models.UserProfile, error)
}

// Queue is the part of *asynq.Client used here.
type Queue interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Inspector is the part of *asynq.Inspector used to drop scheduled tasks.
type Inspector interface {
	DeleteTask(queue, id string) error
}

// Enqueuer schedules booking pushes on the task queue.
type Enqueuer struct {
	profiles  ProfileFetcher
	queue     Queue
	inspector Inspector
	logger    *zap.Logger
	now       func() time.Time
}

func NewEnqueuer(profiles ProfileFetcher, queue Queue, logger *zap.Logger) *Enqueuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enqueuer{profiles: profiles, queue: queue, logger: logger, now: time.Now}
}

// WithClock overrides the clock used to schedule reminders.
func (e *Enqueuer) WithClock(now func() time.Time) *Enqueuer {
	e.now = now
	return e
}

// WithInspector enables withdrawing queued pushes.
func (e *Enqueuer) WithInspector(i Inspector) *Enqueuer {
	e.inspector = i
	return e
}

// BookingConfirmed queues the confirmation push and, when check-in is more
// than a day away, a reminder for the day before.
func (e *Enqueuer) BookingConfirmed(ctx context.Context, sess session.Session, n models.BookingNotice) error {
	if n.DeviceToken == "" && n.UserID != "" && e.profiles != nil {
		profile, err := e.profiles.GetProfile(ctx, sess, n.UserID)
		if err != nil {
			return err
		}
		n.DeviceToken = profile.FCMToken
	}
	if n.DeviceToken == "" {
		e.logger.Info("no device token, skipping booking pushes", zap.String("bookingId", n.BookingID))
		return nil
	}

	task, opts, err := NewBookingConfirmedTask(n)
	if err != nil {
		return err
	}
	if err := e.enqueue(ctx, task, opts); err != nil {
		return err
	}

	if n.CheckIn.IsZero() {
		return nil
	}
	fireAt := n.CheckIn.Add(-ReminderLead)
	if !fireAt.After(e.now()) {
		return nil
	}
	task, opts, err = NewStayReminderTask(n, fireAt)
	if err != nil {
		return err
	}
	return e.enqueue(ctx, task, opts)
}

// BookingWithdrawn drops the pushes still queued for a cancelled or rejected
// booking. Tasks that already ran or were never queued are ignored.
func (e *Enqueuer) BookingWithdrawn(_ context.Context, source models.BookingSource, bookingID string) error {
	if e.inspector == nil {
		return nil
	}
	n := models.BookingNotice{Source: source, BookingID: bookingID}
	var errs []error
	for _, kind := range []string{TypeStayReminder, TypeBookingConfirmed} {
		id := taskID(kind, n)
		err := e.inspector.DeleteTask(DefaultQueue, id)
		switch {
		case err == nil:
			e.logger.Info("task withdrawn", zap.String("taskId", id))
		case errors.Is(err, asynq.ErrTaskNotFound), errors.Is(err, asynq.ErrQueueNotFound):
		default:
			errs = append(errs, fmt.Errorf("withdraw %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (e *Enqueuer) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	info, err := e.queue.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		e.logger.Debug("task already queued", zap.String("type", task.Type()))
		return nil
	}
	if err != nil {
		return err
	}
	e.logger.Info("task queued", zap.String("type", task.Type()), zap.String("taskId", info.ID), zap.Time("processAt", info.NextProcessAt))
	return nil
}
