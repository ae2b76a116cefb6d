package api

import (
	"context"
	"net/http"
	"net/url"

	"campstay/models"
	"campstay/services/session"
)

// AdminPackageBookings lists every package booking.
func (c *Client) AdminPackageBookings(ctx context.Context, sess session.Session) ([]models.PackageBooking, error) {
	var out []models.PackageBooking
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/admin/bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminHostBookings lists every host-listing booking.
func (c *Client) AdminHostBookings(ctx context.Context, sess session.Session) ([]models.HostBooking, error) {
	var out []models.HostBooking
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/admin/host-bookings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type statusUpdate struct {
	Status models.BookingStatus `json:"status"`
}

// UpdateBookingStatus records an administrator decision on a booking.
func (c *Client) UpdateBookingStatus(ctx context.Context, sess session.Session, source models.BookingSource, id string, status models.BookingStatus) error {
	path := "/api/admin/bookings/"
	if source == models.SourceHost {
		path = "/api/admin/host-bookings/"
	}
	return c.doJSON(ctx, sess, http.MethodPut, path+url.PathEscape(id)+"/status", statusUpdate{Status: status}, nil)
}
