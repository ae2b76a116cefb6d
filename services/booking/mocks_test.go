package booking

import (
	"context"

	"campstay/models"
	"campstay/services/session"
)

type testSession struct {
	token string
	user  string
}

func (s testSession) Token() string         { return s.token }
func (s testSession) IsAuthenticated() bool { return s.token != "" && s.user != "" }
func (s testSession) UserID() string        { return s.user }

var userSession = testSession{token: "tok", user: "u1"}

type mockAPI struct {
	createPackageFn func(ctx context.Context, req models.PackageBookingRequest) (*models.PackageBooking, error)
	createHostFn    func(ctx context.Context, req models.HostBookingRequest) (*models.HostBooking, error)
	userPackagesFn  func(ctx context.Context, userID string) ([]models.PackageBooking, error)
	userHostsFn     func(ctx context.Context, userID string) ([]models.HostBooking, error)
	adminPackagesFn func(ctx context.Context) ([]models.PackageBooking, error)
	adminHostsFn    func(ctx context.Context) ([]models.HostBooking, error)
	getFn           func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error)
	cancelFn        func(ctx context.Context, source models.BookingSource, id string) error
	updateStatusFn  func(ctx context.Context, source models.BookingSource, id string, status models.BookingStatus) error
}

var (
	_ SubmissionAPI = (*mockAPI)(nil)
	_ SourceAPI     = (*mockAPI)(nil)
	_ AdminAPI      = (*mockAPI)(nil)
)

func (m *mockAPI) CreatePackageBooking(ctx context.Context, _ session.Session, req models.PackageBookingRequest) (*models.PackageBooking, error) {
	return m.createPackageFn(ctx, req)
}

func (m *mockAPI) CreateHostBooking(ctx context.Context, _ session.Session, req models.HostBookingRequest) (*models.HostBooking, error) {
	return m.createHostFn(ctx, req)
}

func (m *mockAPI) UserPackageBookings(ctx context.Context, _ session.Session, userID string) ([]models.PackageBooking, error) {
	if m.userPackagesFn == nil {
		return nil, nil
	}
	return m.userPackagesFn(ctx, userID)
}

func (m *mockAPI) UserHostBookings(ctx context.Context, _ session.Session, userID string) ([]models.HostBooking, error) {
	if m.userHostsFn == nil {
		return nil, nil
	}
	return m.userHostsFn(ctx, userID)
}

func (m *mockAPI) AdminPackageBookings(ctx context.Context, _ session.Session) ([]models.PackageBooking, error) {
	if m.adminPackagesFn == nil {
		return nil, nil
	}
	return m.adminPackagesFn(ctx)
}

func (m *mockAPI) AdminHostBookings(ctx context.Context, _ session.Session) ([]models.HostBooking, error) {
	if m.adminHostsFn == nil {
		return nil, nil
	}
	return m.adminHostsFn(ctx)
}

func (m *mockAPI) GetBooking(ctx context.Context, _ session.Session, source models.BookingSource, id string) (models.BookingRecord, error) {
	return m.getFn(ctx, source, id)
}

func (m *mockAPI) CancelBooking(ctx context.Context, _ session.Session, source models.BookingSource, id string) error {
	if m.cancelFn == nil {
		return nil
	}
	return m.cancelFn(ctx, source, id)
}

func (m *mockAPI) UpdateBookingStatus(ctx context.Context, _ session.Session, source models.BookingSource, id string, status models.BookingStatus) error {
	if m.updateStatusFn == nil {
		return nil
	}
	return m.updateStatusFn(ctx, source, id, status)
}

type mockUploader struct {
	uploadFn func(ctx context.Context, doc models.Document) (string, error)
}

func (m *mockUploader) UploadIdentityDocument(ctx context.Context, doc models.Document) (string, error) {
	return m.uploadFn(ctx, doc)
}

type recordingWithdrawer struct {
	withdrawn []string
	err       error
}

func (w *recordingWithdrawer) BookingWithdrawn(_ context.Context, source models.BookingSource, id string) error {
	w.withdrawn = append(w.withdrawn, string(source)+":"+id)
	return w.err
}
