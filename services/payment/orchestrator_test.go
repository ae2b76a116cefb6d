package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"campstay/models"
	"campstay/services/api"
	"campstay/services/session"

	"github.com/stretchr/testify/require"
)

type testSession struct{ user string }

func (s testSession) Token() string         { return "tok" }
func (s testSession) IsAuthenticated() bool { return s.user != "" }
func (s testSession) UserID() string        { return s.user }

var (
	userSession  = testSession{user: "u1"}
	otherSession = testSession{user: "u2"}
)

type mockAPI struct {
	orderFn  func(ctx context.Context, req models.PaymentOrderRequest) (*models.PaymentOrder, error)
	verifyFn func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error)
	getFn    func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error)
	orders   int
	verifies int
	reads    int
}

var _ API = (*mockAPI)(nil)

func (m *mockAPI) CreatePaymentOrder(ctx context.Context, _ session.Session, req models.PaymentOrderRequest) (*models.PaymentOrder, error) {
	m.orders++
	if m.orderFn == nil {
		return &models.PaymentOrder{OrderID: "order_1", Amount: req.Amount, Currency: "INR"}, nil
	}
	return m.orderFn(ctx, req)
}

func (m *mockAPI) VerifyPayment(ctx context.Context, _ session.Session, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
	m.verifies++
	return m.verifyFn(ctx, req)
}

func (m *mockAPI) GetBooking(ctx context.Context, _ session.Session, source models.BookingSource, id string) (models.BookingRecord, error) {
	m.reads++
	if m.getFn == nil {
		return packageRecord("pending", "pending"), nil
	}
	return m.getFn(ctx, source, id)
}

func packageRecord(status, paymentStatus string) models.PackageBooking {
	return models.PackageBooking{
		ID:            "b1",
		PackageID:     "p1",
		UserID:        "u1",
		CheckIn:       models.MustDate("2099-07-01"),
		Guests:        2,
		Status:        status,
		PaymentStatus: paymentStatus,
		PaymentMethod: "online",
	}
}

type recordingNotifier struct {
	notices []models.BookingNotice
	err     error
}

func (n *recordingNotifier) BookingConfirmed(_ context.Context, _ session.Session, notice models.BookingNotice) error {
	n.notices = append(n.notices, notice)
	return n.err
}

func onlineBooking() models.Booking {
	return models.Booking{
		ID:            "b1",
		Source:        models.SourcePackage,
		UserID:        "u1",
		Title:         "Riverside Camp",
		CheckIn:       models.MustDate("2099-07-01"),
		Guests:        2,
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentPending,
		PaymentMethod: models.PayOnline,
	}
}

func proof() models.PaymentProof {
	return models.PaymentProof{OrderID: "order_1", PaymentID: "pay_1", Signature: "sig"}
}

func TestPayAtPropertyNeedsNoPayment(t *testing.T) {
	m := &mockAPI{}
	n := &recordingNotifier{}
	o := NewOrchestrator(m, nil, n, nil)

	b := onlineBooking()
	b.PaymentMethod = models.PayAtProperty
	b.PaymentStatus = models.PaymentUnpaid

	a, err := o.Begin(context.Background(), userSession, b, 1500)
	require.NoError(t, err)
	require.Equal(t, StateNotRequired, a.State)
	require.Equal(t, models.PaymentUnpaid, a.PaymentStatus())
	require.True(t, a.Confirmed())
	require.Zero(t, m.orders)
	require.Len(t, n.notices, 1)
	require.Equal(t, models.PayAtProperty, n.notices[0].PaymentMethod)
}

func TestOnlinePaymentVerified(t *testing.T) {
	m := &mockAPI{
		verifyFn: func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
			require.Equal(t, "b1", req.BookingID)
			require.Equal(t, "pay_1", req.PaymentID)
			require.Equal(t, "sig", req.Signature)
			return &models.VerifyPaymentResult{Verified: true}, nil
		},
	}
	n := &recordingNotifier{}
	o := NewOrchestrator(m, NewMemoryAttemptStore(), n, nil)

	a, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)
	require.Equal(t, StateAwaitingUserConfirmation, a.State)
	require.Equal(t, 3000.0, a.Amount)
	require.Equal(t, "order_1", a.OrderID)
	require.Equal(t, models.PaymentPending, a.PaymentStatus())
	require.Empty(t, n.notices)

	// begin again is idempotent
	again, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)
	require.Equal(t, a.ID, again.ID)
	require.Equal(t, 1, m.orders)

	a, err = o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.NoError(t, err)
	require.Equal(t, StateVerified, a.State)
	require.Equal(t, models.PaymentPaid, a.PaymentStatus())
	require.Equal(t, "pay_1", a.PaymentID)
	require.Len(t, n.notices, 1)

	// a verified attempt cannot be verified twice
	_, err = o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	require.Equal(t, 1, m.verifies)
}

func TestVerificationRejectedIsRetryable(t *testing.T) {
	verified := false
	m := &mockAPI{
		verifyFn: func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
			return &models.VerifyPaymentResult{Verified: verified}, nil
		},
	}
	n := &recordingNotifier{}
	o := NewOrchestrator(m, nil, n, nil)

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)

	a, err := o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.ErrorIs(t, err, ErrVerificationRejected)
	require.Equal(t, StateFailed, a.State)
	require.NotEqual(t, models.PaymentPaid, a.PaymentStatus())
	require.True(t, a.Retryable())
	require.Empty(t, n.notices)

	a, err = o.Retry(context.Background(), userSession, models.SourcePackage, "b1")
	require.NoError(t, err)
	require.Equal(t, StateAwaitingUserConfirmation, a.State)
	require.Equal(t, 2, m.orders)
	require.Equal(t, 1, a.Failures)

	verified = true
	a, err = o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.NoError(t, err)
	require.Equal(t, StateVerified, a.State)
	require.Len(t, n.notices, 1)
}

func TestVerifyTimeoutStaysVerifying(t *testing.T) {
	answered := false
	m := &mockAPI{
		verifyFn: func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
			if !answered {
				return nil, &api.TransportError{Endpoint: "/api/payments/verify", Err: context.DeadlineExceeded}
			}
			return &models.VerifyPaymentResult{Verified: true}, nil
		},
	}
	n := &recordingNotifier{}
	o := NewOrchestrator(m, nil, n, nil)

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)
	a, err := o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, StateVerifying, a.State)
	require.Equal(t, models.PaymentPending, a.PaymentStatus())
	require.Zero(t, a.Failures)

	stored, err := o.Status(context.Background(), userSession, models.SourcePackage, "b1")
	require.NoError(t, err)
	require.Equal(t, StateVerifying, stored.State)
	require.NotEmpty(t, stored.LastError)

	// no fresh order while the first outcome is unknown
	_, err = o.Retry(context.Background(), userSession, models.SourcePackage, "b1")
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	_, err = o.Abandon(context.Background(), userSession, models.SourcePackage, "b1")
	require.True(t, errors.As(err, &te))
	require.Equal(t, 1, m.orders)

	// confirming again settles it
	answered = true
	a, err = o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.NoError(t, err)
	require.Equal(t, StateVerified, a.State)
	require.Equal(t, 2, m.verifies)
	require.Len(t, n.notices, 1)
}

func TestVerifyServerRefusalFails(t *testing.T) {
	m := &mockAPI{
		verifyFn: func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
			return nil, &api.TransportError{Endpoint: "/api/payments/verify", StatusCode: 400, Message: "bad signature"}
		},
	}
	o := NewOrchestrator(m, nil, nil, nil)

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)
	a, err := o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.Error(t, err)
	require.Equal(t, StateFailed, a.State)
	require.True(t, a.Retryable())
}

func TestRetryRefusesBookingPaidBehindFailure(t *testing.T) {
	m := &mockAPI{
		verifyFn: func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
			return &models.VerifyPaymentResult{Verified: false}, nil
		},
		getFn: func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error) {
			require.Equal(t, models.SourcePackage, source)
			require.Equal(t, "b1", id)
			return packageRecord("pending", "paid"), nil
		},
	}
	o := NewOrchestrator(m, nil, nil, nil)

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)
	_, err = o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.ErrorIs(t, err, ErrVerificationRejected)

	_, err = o.Retry(context.Background(), userSession, models.SourcePackage, "b1")
	require.ErrorIs(t, err, ErrAlreadyPaid)
	require.Equal(t, 1, m.orders)
	require.Equal(t, 1, m.reads)

	stored, err := o.Status(context.Background(), userSession, models.SourcePackage, "b1")
	require.NoError(t, err)
	require.Equal(t, StateFailed, stored.State)
}

func TestRetryRefusesWithdrawnBooking(t *testing.T) {
	m := &mockAPI{
		orderFn: func(ctx context.Context, req models.PaymentOrderRequest) (*models.PaymentOrder, error) {
			return nil, errors.New("provider down")
		},
		getFn: func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error) {
			return packageRecord("cancelled", "pending"), nil
		},
	}
	o := NewOrchestrator(m, nil, nil, nil)

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.Error(t, err)
	_, err = o.Retry(context.Background(), userSession, models.SourcePackage, "b1")
	require.ErrorIs(t, err, ErrBookingNotPayable)
	require.Equal(t, 1, m.orders)
}

func TestAttemptsAreOwnerOnly(t *testing.T) {
	m := &mockAPI{
		verifyFn: func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
			return &models.VerifyPaymentResult{Verified: true}, nil
		},
	}
	o := NewOrchestrator(m, nil, nil, nil)
	ctx := context.Background()

	_, err := o.Begin(ctx, userSession, onlineBooking(), 1500)
	require.NoError(t, err)

	_, err = o.Status(ctx, otherSession, models.SourcePackage, "b1")
	require.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = o.Abandon(ctx, otherSession, models.SourcePackage, "b1")
	require.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = o.Retry(ctx, otherSession, models.SourcePackage, "b1")
	require.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = o.Confirm(ctx, otherSession, models.SourcePackage, "b1", proof())
	require.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = o.Begin(ctx, otherSession, onlineBooking(), 1500)
	require.ErrorIs(t, err, ErrAttemptNotFound)
	_, err = o.Abandon(ctx, testSession{}, models.SourcePackage, "b1")
	require.ErrorIs(t, err, session.ErrNoSession)
	require.Zero(t, m.verifies)

	// the owner's attempt is untouched
	a, err := o.Confirm(ctx, userSession, models.SourcePackage, "b1", proof())
	require.NoError(t, err)
	require.Equal(t, StateVerified, a.State)
}

func TestConcurrentConfirmVerifiesOnce(t *testing.T) {
	var o *Orchestrator
	var nestedErr error
	m := &mockAPI{}
	m.verifyFn = func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
		if m.verifies == 1 {
			// a second callback lands while the first is still verifying
			_, nestedErr = o.Confirm(ctx, userSession, models.SourcePackage, "b1", proof())
		}
		return &models.VerifyPaymentResult{Verified: true}, nil
	}
	n := &recordingNotifier{}
	o = NewOrchestrator(m, nil, n, nil)

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)
	a, err := o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.NoError(t, err)
	require.Equal(t, StateVerified, a.State)
	require.ErrorIs(t, nestedErr, ErrVerificationInProgress)
	require.Equal(t, 1, m.verifies)
	require.Len(t, n.notices, 1)

	// the lock is released afterwards
	_, err = o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	var te *TransitionError
	require.True(t, errors.As(err, &te))
}

func TestProofForAnotherOrderIsRejectedLocally(t *testing.T) {
	m := &mockAPI{}
	o := NewOrchestrator(m, nil, nil, nil)

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)

	forged := proof()
	forged.OrderID = "order_other"
	a, err := o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", forged)
	require.ErrorIs(t, err, ErrVerificationRejected)
	require.Equal(t, StateFailed, a.State)
	require.Zero(t, m.verifies)
}

func TestOrderFailureAndAbandon(t *testing.T) {
	fail := true
	m := &mockAPI{
		orderFn: func(ctx context.Context, req models.PaymentOrderRequest) (*models.PaymentOrder, error) {
			if fail {
				return nil, errors.New("provider down")
			}
			return &models.PaymentOrder{OrderID: "order_2", Amount: req.Amount, Currency: "INR"}, nil
		},
	}
	o := NewOrchestrator(m, nil, nil, nil)

	a, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.Error(t, err)
	require.Equal(t, StateFailed, a.State)

	fail = false
	a, err = o.Retry(context.Background(), userSession, models.SourcePackage, "b1")
	require.NoError(t, err)
	require.Equal(t, "order_2", a.OrderID)

	a, err = o.Abandon(context.Background(), userSession, models.SourcePackage, "b1")
	require.NoError(t, err)
	require.Equal(t, StateFailed, a.State)
	require.Equal(t, 2, a.Failures)

	_, err = o.Abandon(context.Background(), userSession, models.SourcePackage, "b1")
	var te *TransitionError
	require.True(t, errors.As(err, &te))
}

func TestServerAmountWins(t *testing.T) {
	var requested float64
	m := &mockAPI{
		orderFn: func(ctx context.Context, req models.PaymentOrderRequest) (*models.PaymentOrder, error) {
			requested = req.Amount
			return &models.PaymentOrder{OrderID: "order_1", Amount: req.Amount}, nil
		},
	}
	b := onlineBooking()
	b.Amount = 3500

	a, err := NewOrchestrator(m, nil, nil, nil).Begin(context.Background(), userSession, b, 1500)
	require.NoError(t, err)
	require.Equal(t, 3500.0, requested)
	require.Equal(t, 3000.0, a.AdvisoryAmount)
}

func TestBeginGuards(t *testing.T) {
	o := NewOrchestrator(&mockAPI{}, nil, nil, nil)

	paid := onlineBooking()
	paid.PaymentStatus = models.PaymentPaid
	_, err := o.Begin(context.Background(), userSession, paid, 1500)
	require.ErrorIs(t, err, ErrAlreadyPaid)

	_, err = o.Begin(context.Background(), testSession{}, onlineBooking(), 1500)
	require.ErrorIs(t, err, session.ErrNoSession)

	_, err = o.Status(context.Background(), userSession, models.SourceHost, "missing")
	require.ErrorIs(t, err, ErrAttemptNotFound)

	for _, status := range []models.BookingStatus{models.StatusCancelled, models.StatusRejected} {
		b := onlineBooking()
		b.Status = status
		_, err = o.Begin(context.Background(), userSession, b, 1500)
		require.ErrorIs(t, err, ErrBookingNotPayable, status)
	}

	accepted := onlineBooking()
	accepted.Status = models.StatusAccepted
	_, err = o.Begin(context.Background(), userSession, accepted, 1500)
	require.NoError(t, err)
}

func TestNotifierFailureDoesNotUndoConfirmation(t *testing.T) {
	m := &mockAPI{
		verifyFn: func(ctx context.Context, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
			return &models.VerifyPaymentResult{Verified: true}, nil
		},
	}
	n := &recordingNotifier{err: errors.New("queue unavailable")}
	o := NewOrchestrator(m, nil, n, nil)
	o.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err := o.Begin(context.Background(), userSession, onlineBooking(), 1500)
	require.NoError(t, err)
	a, err := o.Confirm(context.Background(), userSession, models.SourcePackage, "b1", proof())
	require.NoError(t, err)
	require.Equal(t, StateVerified, a.State)
	require.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), a.UpdatedAt)
}
