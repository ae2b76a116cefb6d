package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"campstay/models"
	"campstay/services/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Aggregator merges the package and host booking sources into one list.
type Aggregator struct {
	api        SourceAPI
	withdrawer Withdrawer
	logger     *zap.Logger
	now        func() time.Time
}

func NewAggregator(a SourceAPI, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{api: a, logger: logger, now: time.Now}
}

// WithClock overrides the clock used for cancellation eligibility.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// WithWithdrawer sets where cancelled bookings are reported.
func (a *Aggregator) WithWithdrawer(w Withdrawer) *Aggregator {
	a.withdrawer = w
	return a
}

// LoadForUser fetches both sources in parallel and waits for both. A failure
// in either aborts the whole load with an *AggregateLoadError; no partial list
// is ever returned. Rejected bookings are dropped and the rest sorted newest
// first.
func (a *Aggregator) LoadForUser(ctx context.Context, sess session.Session, userID string) ([]models.UnifiedBookingView, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}

	var (
		packages []models.PackageBooking
		hosted   []models.HostBooking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := a.api.UserPackageBookings(gctx, sess, userID)
		if err != nil {
			return fmt.Errorf("package bookings: %w", err)
		}
		packages = out
		return nil
	})
	g.Go(func() error {
		out, err := a.api.UserHostBookings(gctx, sess, userID)
		if err != nil {
			return fmt.Errorf("host bookings: %w", err)
		}
		hosted = out
		return nil
	})
	if err := g.Wait(); err != nil {
		a.logger.Warn("booking aggregate load failed", zap.String("userId", userID), zap.Error(err))
		return nil, newAggregateLoadError(err)
	}

	records := make([]models.BookingRecord, 0, len(packages)+len(hosted))
	for _, p := range packages {
		records = append(records, p)
	}
	for _, h := range hosted {
		records = append(records, h)
	}

	views, err := a.unify(records, true)
	if err != nil {
		a.logger.Warn("booking aggregate parse failed", zap.String("userId", userID), zap.Error(err))
		return nil, newAggregateLoadError(err)
	}
	return views, nil
}

// Cancellable applies the customer cancellation rule at the aggregator's clock.
func (a *Aggregator) Cancellable(view models.UnifiedBookingView) bool {
	return CanCustomerCancel(view.FinalStatus, view.CheckIn, a.now())
}

// Cancel re-reads the booking from its source and cancels it only if the
// customer rule still holds. Callers re-fetch the list afterwards.
func (a *Aggregator) Cancel(ctx context.Context, sess session.Session, source models.BookingSource, id string) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	record, err := a.api.GetBooking(ctx, sess, source, id)
	if err != nil {
		return err
	}
	view, err := record.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedBookingState, err)
	}
	if !a.Cancellable(view) {
		return ErrNotCancellable
	}
	if err := a.api.CancelBooking(ctx, sess, source, id); err != nil {
		return err
	}
	a.logger.Info("booking cancelled", zap.String("bookingId", id), zap.String("source", string(source)))
	withdraw(ctx, a.withdrawer, a.logger, source, id)
	return nil
}

// withdraw reports a booking that will not take place. Failures are logged;
// the status change on the server already happened.
func withdraw(ctx context.Context, w Withdrawer, logger *zap.Logger, source models.BookingSource, id string) {
	if w == nil {
		return
	}
	if err := w.BookingWithdrawn(ctx, source, id); err != nil {
		logger.Warn("withdraw booking notices failed", zap.String("bookingId", id), zap.Error(err))
	}
}

// unify normalises records, optionally drops rejected ones, marks
// cancellation eligibility and sorts by effective time, newest first.
func (a *Aggregator) unify(records []models.BookingRecord, dropRejected bool) ([]models.UnifiedBookingView, error) {
	now := a.now()
	views := make([]models.UnifiedBookingView, 0, len(records))
	for _, r := range records {
		v, err := r.Normalize()
		if err != nil {
			return nil, err
		}
		if dropRejected && v.FinalStatus == models.StatusRejected {
			continue
		}
		v.Cancellable = CanCustomerCancel(v.FinalStatus, v.CheckIn, now)
		views = append(views, v)
	}
	sortNewestFirst(views)
	return views, nil
}

func sortNewestFirst(views []models.UnifiedBookingView) {
	sort.SliceStable(views, func(i, j int) bool {
		ti, tj := views[i].EffectiveTime(), views[j].EffectiveTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return views[i].ID < views[j].ID
	})
}
