package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"campstay/models"

	"github.com/stretchr/testify/require"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var fixedNow = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestLoadForUserMergesBothSources(t *testing.T) {
	m := &mockAPI{
		userPackagesFn: func(ctx context.Context, userID string) ([]models.PackageBooking, error) {
			require.Equal(t, "u1", userID)
			return []models.PackageBooking{
				{ID: "b1", PackageID: "p1", Status: "accepted", CheckIn: models.MustDate("2099-01-10"), CreatedAt: at("2025-01-01T00:00:00Z")},
				{ID: "b3", PackageID: "p2", Status: "cancelled", CheckIn: models.MustDate("2099-02-01")},
			}, nil
		},
		userHostsFn: func(ctx context.Context, userID string) ([]models.HostBooking, error) {
			return []models.HostBooking{
				{ID: "h1", ListingID: "l1", BookingStatus: "rejected", CheckIn: models.MustDate("2099-03-01"), CreatedAt: at("2025-03-01T00:00:00Z")},
				{ID: "h2", ListingID: "l2", BookingStatus: "pending", CheckIn: models.MustDate("2000-01-01"), CreatedAt: at("2025-02-01T00:00:00Z")},
			}, nil
		},
	}

	views, err := NewAggregator(m, nil).WithClock(fixedNow).LoadForUser(context.Background(), userSession, "u1")
	require.NoError(t, err)

	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
		require.NotEqual(t, models.StatusRejected, v.FinalStatus)
	}
	require.Equal(t, []string{"b3", "h2", "b1"}, ids)

	require.False(t, views[0].Cancellable, "cancelled booking")
	require.False(t, views[1].Cancellable, "check-in in the past")
	require.True(t, views[2].Cancellable)
	require.Equal(t, models.SourceHost, views[1].Source)
}

func TestLoadForUserFailsWhole(t *testing.T) {
	m := &mockAPI{
		userPackagesFn: func(ctx context.Context, userID string) ([]models.PackageBooking, error) {
			return []models.PackageBooking{{ID: "b1", PackageID: "p1"}}, nil
		},
		userHostsFn: func(ctx context.Context, userID string) ([]models.HostBooking, error) {
			return nil, errors.New("host service unavailable")
		},
	}

	views, err := NewAggregator(m, nil).LoadForUser(context.Background(), userSession, "u1")
	require.Nil(t, views)
	var aggErr *AggregateLoadError
	require.True(t, errors.As(err, &aggErr))
	require.Equal(t, "aggregateLoadError", aggErr.Code)
	require.ErrorContains(t, err, "host service unavailable")
}

func TestLoadForUserUnknownStatusFails(t *testing.T) {
	m := &mockAPI{
		userPackagesFn: func(ctx context.Context, userID string) ([]models.PackageBooking, error) {
			return []models.PackageBooking{{ID: "b1", PackageID: "p1", Status: "on-hold"}}, nil
		},
	}
	_, err := NewAggregator(m, nil).LoadForUser(context.Background(), userSession, "u1")
	var aggErr *AggregateLoadError
	require.True(t, errors.As(err, &aggErr))
}

func TestSortTieBreaksOnID(t *testing.T) {
	created := at("2025-01-01T00:00:00Z")
	m := &mockAPI{
		userPackagesFn: func(ctx context.Context, userID string) ([]models.PackageBooking, error) {
			return []models.PackageBooking{{ID: "z", PackageID: "p", CreatedAt: created}}, nil
		},
		userHostsFn: func(ctx context.Context, userID string) ([]models.HostBooking, error) {
			return []models.HostBooking{{ID: "a", ListingID: "l", CreatedAt: created}}, nil
		},
	}
	views, err := NewAggregator(m, nil).LoadForUser(context.Background(), userSession, "u1")
	require.NoError(t, err)
	require.Equal(t, "a", views[0].ID)
	require.Equal(t, "z", views[1].ID)
}

func TestCancel(t *testing.T) {
	var cancelled []string
	m := &mockAPI{
		getFn: func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error) {
			switch id {
			case "future":
				return models.HostBooking{ID: id, ListingID: "l", BookingStatus: "accepted", CheckIn: models.MustDate("2099-01-01")}, nil
			case "past":
				return models.HostBooking{ID: id, ListingID: "l", BookingStatus: "accepted", CheckIn: models.MustDate("2000-01-01")}, nil
			}
			return models.PackageBooking{ID: id, PackageID: "p", Status: "rejected", CheckIn: models.MustDate("2099-01-01")}, nil
		},
		cancelFn: func(ctx context.Context, source models.BookingSource, id string) error {
			cancelled = append(cancelled, id)
			return nil
		},
	}
	agg := NewAggregator(m, nil).WithClock(fixedNow)

	require.NoError(t, agg.Cancel(context.Background(), userSession, models.SourceHost, "future"))
	require.ErrorIs(t, agg.Cancel(context.Background(), userSession, models.SourceHost, "past"), ErrNotCancellable)
	require.ErrorIs(t, agg.Cancel(context.Background(), userSession, models.SourcePackage, "rejected"), ErrNotCancellable)
	require.Equal(t, []string{"future"}, cancelled)
}

func TestCancelWithdrawsNotices(t *testing.T) {
	cancelErr := error(nil)
	m := &mockAPI{
		getFn: func(ctx context.Context, source models.BookingSource, id string) (models.BookingRecord, error) {
			return models.HostBooking{ID: id, ListingID: "l", BookingStatus: "pending", CheckIn: models.MustDate("2099-01-01")}, nil
		},
		cancelFn: func(ctx context.Context, source models.BookingSource, id string) error {
			return cancelErr
		},
	}
	w := &recordingWithdrawer{err: errors.New("redis down")}
	agg := NewAggregator(m, nil).WithClock(fixedNow).WithWithdrawer(w)

	// a withdrawal failure never fails the cancellation
	require.NoError(t, agg.Cancel(context.Background(), userSession, models.SourceHost, "h1"))
	require.Equal(t, []string{"host:h1"}, w.withdrawn)

	cancelErr = errors.New("upstream down")
	require.Error(t, agg.Cancel(context.Background(), userSession, models.SourceHost, "h2"))
	require.Equal(t, []string{"host:h1"}, w.withdrawn)
}
