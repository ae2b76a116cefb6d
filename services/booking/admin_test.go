package booking

import (
	"context"
	"testing"

	"campstay/models"

	"github.com/stretchr/testify/require"
)

var adminSession = testSession{token: "tok", user: "admin-1"}

func TestAdminListAllKeepsRejected(t *testing.T) {
	m := &mockAPI{
		adminPackagesFn: func(ctx context.Context) ([]models.PackageBooking, error) {
			return []models.PackageBooking{{ID: "b1", PackageID: "p1", Status: "rejected", CreatedAt: at("2025-01-01T00:00:00Z")}}, nil
		},
		adminHostsFn: func(ctx context.Context) ([]models.HostBooking, error) {
			return []models.HostBooking{{ID: "h1", ListingID: "l1", BookingStatus: "pending", CreatedAt: at("2025-02-01T00:00:00Z")}}, nil
		},
	}

	views, err := NewAdminService(m, nil).ListAll(context.Background(), adminSession)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "h1", views[0].ID)
	require.Equal(t, models.StatusRejected, views[1].FinalStatus)
}

func TestAdminDecide(t *testing.T) {
	var updates []models.BookingStatus
	status := "pending"
	m := &mockAPI{
		getFn: func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error) {
			return models.HostBooking{ID: id, ListingID: "l1", BookingStatus: status}, nil
		},
		updateStatusFn: func(ctx context.Context, source models.BookingSource, id string, s models.BookingStatus) error {
			require.Equal(t, models.SourceHost, source)
			updates = append(updates, s)
			return nil
		},
	}
	svc := NewAdminService(m, nil)

	require.NoError(t, svc.Decide(context.Background(), adminSession, models.SourceHost, "h1", DecisionAccept))

	status = "accepted"
	err := svc.Decide(context.Background(), adminSession, models.SourceHost, "h1", DecisionReject)
	require.ErrorIs(t, err, ErrTransitionNotAllowed)

	status = "cancelled"
	err = svc.Decide(context.Background(), adminSession, models.SourceHost, "h1", DecisionAccept)
	require.ErrorIs(t, err, ErrTransitionNotAllowed)

	require.Equal(t, []models.BookingStatus{models.StatusAccepted}, updates)
}

func TestAdminRejectWithdrawsNotices(t *testing.T) {
	m := &mockAPI{
		getFn: func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error) {
			return models.PackageBooking{ID: id, PackageID: "p1", Status: "pending"}, nil
		},
		updateStatusFn: func(ctx context.Context, source models.BookingSource, id string, s models.BookingStatus) error {
			return nil
		},
	}
	w := &recordingWithdrawer{}
	svc := NewAdminService(m, nil).WithWithdrawer(w)

	require.NoError(t, svc.Decide(context.Background(), adminSession, models.SourcePackage, "p-accept", DecisionAccept))
	require.Empty(t, w.withdrawn)

	require.NoError(t, svc.Decide(context.Background(), adminSession, models.SourcePackage, "p-reject", DecisionReject))
	require.Equal(t, []string{"package:p-reject"}, w.withdrawn)
}
