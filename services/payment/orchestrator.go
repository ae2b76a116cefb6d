package payment

import (
	"context"
	"errors"
	"math"
	"time"

	"campstay/models"
	"campstay/services/api"
	"campstay/services/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errAbandoned = errors.New("payment abandoned by user")

// Orchestrator drives the payment flow of a created booking. Provider
// callbacks are untrusted: an attempt reaches Verified only after the server
// accepts the proof.
type Orchestrator struct {
	api      API
	store    AttemptStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewOrchestrator wires an Orchestrator. notifier may be nil.
func NewOrchestrator(a API, store AttemptStore, notifier Notifier, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = NewMemoryAttemptStore()
	}
	return &Orchestrator{api: a, store: store, notifier: notifier, logger: logger, now: time.Now}
}

// Begin starts the flow for a freshly created booking. Pay-at-property
// bookings end in NotRequired; online ones request a provider order and wait
// in AwaitingUserConfirmation. Calling Begin again returns the stored attempt.
func (o *Orchestrator) Begin(ctx context.Context, sess session.Session, b models.Booking, unitPrice float64) (*Attempt, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	if err := payable(b); err != nil {
		return nil, err
	}

	existing, err := o.store.Get(ctx, b.Source, b.ID)
	switch {
	case err == nil:
		if existing.UserID != sess.UserID() {
			return nil, ErrAttemptNotFound
		}
		return existing, nil
	case !errors.Is(err, ErrAttemptNotFound):
		return nil, err
	}

	now := o.now()
	a := &Attempt{
		ID:             uuid.New().String(),
		BookingID:      b.ID,
		Source:         b.Source,
		UserID:         b.UserID,
		Title:          b.Title,
		Method:         b.PaymentMethod,
		CheckIn:        b.CheckIn,
		Guests:         b.Guests,
		UnitPrice:      unitPrice,
		AdvisoryAmount: unitPrice * float64(b.Guests),
		Amount:         b.Amount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if a.UserID == "" {
		a.UserID = sess.UserID()
	}

	if b.PaymentMethod != models.PayOnline {
		a.State = StateNotRequired
		if err := o.store.Save(ctx, a); err != nil {
			return nil, err
		}
		o.logger.Info("payment not required", zap.String("bookingId", a.BookingID))
		o.confirmed(ctx, sess, a)
		return a, nil
	}

	a.State = StateAwaitingOrder
	if err := o.store.Save(ctx, a); err != nil {
		return nil, err
	}
	return o.requestOrder(ctx, sess, a)
}

// Confirm submits the provider callback proof for server verification.
// An attempt left in Verifying by an unanswered verify call may be confirmed
// again with the same proof.
func (o *Orchestrator) Confirm(ctx context.Context, sess session.Session, source models.BookingSource, bookingID string, proof models.PaymentProof) (*Attempt, error) {
	a, err := o.owned(ctx, sess, source, bookingID)
	if err != nil {
		return nil, err
	}

	locked, err := o.store.Lock(ctx, source, bookingID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return a, ErrVerificationInProgress
	}
	defer func() {
		if err := o.store.Unlock(context.Background(), source, bookingID); err != nil {
			o.logger.Warn("release payment verify lock", zap.String("bookingId", bookingID), zap.Error(err))
		}
	}()

	// re-read under the lock, a concurrent confirm may have settled it
	if a, err = o.store.Get(ctx, source, bookingID); err != nil {
		return nil, err
	}
	if a.State != StateVerifying {
		if err := o.move(a, StateVerifying); err != nil {
			return a, err
		}
		if err := o.store.Save(ctx, a); err != nil {
			return nil, err
		}
	}

	if proof.OrderID != a.OrderID {
		o.logger.Warn("payment proof for a different order",
			zap.String("bookingId", bookingID),
			zap.String("expectedOrderId", a.OrderID),
			zap.String("orderId", proof.OrderID))
		return o.fail(ctx, a, ErrVerificationRejected)
	}

	res, err := o.api.VerifyPayment(ctx, sess, models.VerifyPaymentRequest{
		BookingID: a.BookingID,
		Source:    a.Source,
		OrderID:   proof.OrderID,
		PaymentID: proof.PaymentID,
		Signature: proof.Signature,
	})
	if err != nil {
		if outcomeUnknown(err) {
			return o.pending(ctx, a, err)
		}
		return o.fail(ctx, a, err)
	}
	if res == nil || !res.Verified {
		return o.fail(ctx, a, ErrVerificationRejected)
	}

	if err := o.move(a, StateVerified); err != nil {
		return a, err
	}
	a.PaymentID = proof.PaymentID
	a.LastError = ""
	if err := o.store.Save(ctx, a); err != nil {
		return nil, err
	}
	o.logger.Info("payment verified", zap.String("bookingId", a.BookingID), zap.String("orderId", a.OrderID))
	o.confirmed(ctx, sess, a)
	return a, nil
}

// Abandon records that the user closed or timed out of the provider UI.
// An attempt under verification is left for Confirm to settle.
func (o *Orchestrator) Abandon(ctx context.Context, sess session.Session, source models.BookingSource, bookingID string) (*Attempt, error) {
	a, err := o.owned(ctx, sess, source, bookingID)
	if err != nil {
		return nil, err
	}
	if a.State == StateVerifying {
		return a, newTransitionError(a.State, StateFailed)
	}
	a, err = o.fail(ctx, a, errAbandoned)
	if errors.Is(err, errAbandoned) {
		return a, nil
	}
	return a, err
}

// Retry restarts a failed flow from AwaitingOrder with a fresh provider order.
// The booking is re-read first so a payment captured behind a failed
// verification is never charged twice.
func (o *Orchestrator) Retry(ctx context.Context, sess session.Session, source models.BookingSource, bookingID string) (*Attempt, error) {
	a, err := o.owned(ctx, sess, source, bookingID)
	if err != nil {
		return nil, err
	}
	if !a.State.CanTransitionTo(StateAwaitingOrder) {
		return a, newTransitionError(a.State, StateAwaitingOrder)
	}

	record, err := o.api.GetBooking(ctx, sess, source, bookingID)
	if err != nil {
		return nil, err
	}
	view, err := record.Normalize()
	if err != nil {
		return nil, err
	}
	if err := payable(view.Booking); err != nil {
		o.logger.Warn("payment retry refused",
			zap.String("bookingId", bookingID),
			zap.String("status", string(view.Status)),
			zap.String("paymentStatus", string(view.PaymentStatus)))
		return nil, err
	}

	if err := o.move(a, StateAwaitingOrder); err != nil {
		return a, err
	}
	a.OrderID, a.PaymentID = "", ""
	if err := o.store.Save(ctx, a); err != nil {
		return nil, err
	}
	o.logger.Info("payment retry", zap.String("bookingId", bookingID), zap.Int("failures", a.Failures))
	return o.requestOrder(ctx, sess, a)
}

// Status returns the caller's stored attempt.
func (o *Orchestrator) Status(ctx context.Context, sess session.Session, source models.BookingSource, bookingID string) (*Attempt, error) {
	return o.owned(ctx, sess, source, bookingID)
}

// owned loads an attempt for its owner. Attempts of other users are reported
// as missing.
func (o *Orchestrator) owned(ctx context.Context, sess session.Session, source models.BookingSource, bookingID string) (*Attempt, error) {
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	a, err := o.store.Get(ctx, source, bookingID)
	if err != nil {
		return nil, err
	}
	if a.UserID != sess.UserID() {
		o.logger.Warn("payment attempt requested by another user",
			zap.String("bookingId", bookingID),
			zap.String("userId", sess.UserID()))
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

// payable refuses bookings that were paid, cancelled or rejected.
func payable(b models.Booking) error {
	if b.PaymentStatus == models.PaymentPaid {
		return ErrAlreadyPaid
	}
	switch b.Status {
	case models.StatusPending, models.StatusAccepted:
		return nil
	}
	return ErrBookingNotPayable
}

// outcomeUnknown reports a verify failure that may have happened after the
// server recorded the payment. Only an explicit 4xx is a settled refusal.
func outcomeUnknown(err error) bool {
	var transport *api.TransportError
	if errors.As(err, &transport) {
		return !transport.Rejected()
	}
	return true
}

func (o *Orchestrator) requestOrder(ctx context.Context, sess session.Session, a *Attempt) (*Attempt, error) {
	amount := a.AdvisoryAmount
	if a.Amount > 0 && math.Abs(a.Amount-a.AdvisoryAmount) > 0.005 {
		o.logger.Warn("advisory amount differs from server amount, using server amount",
			zap.String("bookingId", a.BookingID),
			zap.Float64("advisory", a.AdvisoryAmount),
			zap.Float64("server", a.Amount))
		amount = a.Amount
	}

	order, err := o.api.CreatePaymentOrder(ctx, sess, models.PaymentOrderRequest{
		BookingID: a.BookingID,
		Source:    a.Source,
		Amount:    amount,
	})
	if err != nil {
		return o.fail(ctx, a, err)
	}

	if err := o.move(a, StateAwaitingUserConfirmation); err != nil {
		return a, err
	}
	a.OrderID = order.OrderID
	a.Amount = order.Amount
	a.Currency = order.Currency
	if err := o.store.Save(ctx, a); err != nil {
		return nil, err
	}
	o.logger.Info("payment order created",
		zap.String("bookingId", a.BookingID),
		zap.String("orderId", a.OrderID),
		zap.Float64("amount", a.Amount))
	return a, nil
}

// fail moves a to Failed, persists it and hands cause back to the caller.
func (o *Orchestrator) fail(ctx context.Context, a *Attempt, cause error) (*Attempt, error) {
	if err := o.move(a, StateFailed); err != nil {
		return a, err
	}
	a.Failures++
	a.LastError = cause.Error()
	if err := o.store.Save(ctx, a); err != nil {
		return nil, err
	}
	o.logger.Warn("payment attempt failed", zap.String("bookingId", a.BookingID), zap.Error(cause))
	return a, cause
}

// pending keeps a in Verifying after an unanswered verify call and hands cause back.
func (o *Orchestrator) pending(ctx context.Context, a *Attempt, cause error) (*Attempt, error) {
	a.LastError = cause.Error()
	a.UpdatedAt = o.now()
	if err := o.store.Save(ctx, a); err != nil {
		return nil, err
	}
	o.logger.Warn("payment verification outcome unknown", zap.String("bookingId", a.BookingID), zap.Error(cause))
	return a, cause
}

func (o *Orchestrator) move(a *Attempt, to State) error {
	if !a.State.CanTransitionTo(to) {
		return newTransitionError(a.State, to)
	}
	a.State = to
	a.UpdatedAt = o.now()
	return nil
}

// confirmed publishes the confirmation notice. Delivery problems are logged
// and never undo the confirmation.
func (o *Orchestrator) confirmed(ctx context.Context, sess session.Session, a *Attempt) {
	if o.notifier == nil {
		return
	}
	notice := models.BookingNotice{
		BookingID:     a.BookingID,
		Source:        a.Source,
		UserID:        a.UserID,
		Title:         a.Title,
		CheckIn:       a.CheckIn,
		PaymentMethod: a.Method,
	}
	if err := o.notifier.BookingConfirmed(ctx, sess, notice); err != nil {
		o.logger.Warn("booking confirmation notice failed", zap.String("bookingId", a.BookingID), zap.Error(err))
	}
}
