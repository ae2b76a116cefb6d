package booking

import (
	"context"
	"fmt"
	"time"

	"campstay/models"
	"campstay/services/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AdminService backs the administrator approval screens.
type AdminService struct {
	api        AdminAPI
	withdrawer Withdrawer
	logger     *zap.Logger
	now        func() time.Time
}

func NewAdminService(a AdminAPI, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{api: a, logger: logger, now: time.Now}
}

// WithWithdrawer sets where rejected bookings are reported.
func (s *AdminService) WithWithdrawer(w Withdrawer) *AdminService {
	s.withdrawer = w
	return s
}

// ListAll returns every booking of both sources, rejected ones included.
func (s *AdminService) ListAll(ctx context.Context, sess session.Session) ([]models.UnifiedBookingView, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}

	var (
		packages []models.PackageBooking
		hosted   []models.HostBooking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		packages, err = s.api.AdminPackageBookings(gctx, sess)
		return err
	})
	g.Go(func() (err error) {
		hosted, err = s.api.AdminHostBookings(gctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, newAggregateLoadError(err)
	}

	records := make([]models.BookingRecord, 0, len(packages)+len(hosted))
	for _, p := range packages {
		records = append(records, p)
	}
	for _, h := range hosted {
		records = append(records, h)
	}
	agg := &Aggregator{logger: s.logger, now: s.now}
	views, err := agg.unify(records, false)
	if err != nil {
		return nil, newAggregateLoadError(err)
	}
	return views, nil
}

// Decide accepts or rejects a booking. The current status is re-read from
// the server and the decision is refused unless the booking is pending.
func (s *AdminService) Decide(ctx context.Context, sess session.Session, source models.BookingSource, id string, d Decision) error {
	if err := session.Require(sess); err != nil {
		return err
	}
	record, err := s.api.GetBooking(ctx, sess, source, id)
	if err != nil {
		return err
	}
	view, err := record.Normalize()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnexpectedBookingState, err)
	}
	if !d.Allowed(view.FinalStatus) {
		return fmt.Errorf("%w: cannot %s a %s booking", ErrTransitionNotAllowed, d, view.FinalStatus)
	}
	if err := s.api.UpdateBookingStatus(ctx, sess, source, id, d.Target()); err != nil {
		return err
	}
	s.logger.Info("admin booking decision",
		zap.String("bookingId", id),
		zap.String("source", string(source)),
		zap.String("decision", string(d)))
	if d.Target() == models.StatusRejected {
		withdraw(ctx, s.withdrawer, s.logger, source, id)
	}
	return nil
}
