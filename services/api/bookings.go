package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"campstay/models"
	"campstay/services/session"
)

// sourceRoot is the REST collection serving each booking source.
func sourceRoot(source models.BookingSource) (string, error) {
	switch source {
	case models.SourcePackage:
		return "/api/bookings", nil
	case models.SourceHost:
		return "/api/host-bookings", nil
	}
	return "", fmt.Errorf("unknown booking source %q", source)
}

// CreatePackageBooking posts a package booking. The identity document, when
// present, is sent as multipart form data; otherwise the body is JSON.
func (c *Client) CreatePackageBooking(ctx context.Context, sess session.Session, req models.PackageBookingRequest) (*models.PackageBooking, error) {
	var out models.PackageBooking
	if req.IdentityDocument == nil {
		if err := c.doJSON(ctx, sess, http.MethodPost, "/api/bookings", req, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	body, contentType, err := encodePackageMultipart(req)
	if err != nil {
		return nil, fmt.Errorf("encode package booking: %w", err)
	}
	if err := c.do(ctx, sess, http.MethodPost, "/api/bookings", body, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func encodePackageMultipart(req models.PackageBookingRequest) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"packageId", req.PackageID},
		{"name", req.Name},
		{"email", req.Email},
		{"phone", req.Phone},
		{"checkIn", req.CheckIn.String()},
		{"checkOut", req.CheckOut.String()},
		{"guests", strconv.Itoa(req.Guests)},
		{"paymentMethod", string(req.PaymentMethod)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	doc := req.IdentityDocument
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="idProof"; filename=%q`, doc.Filename))
	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// CreateHostBooking posts a host-listing booking. Identity documents travel
// as a previously uploaded URL.
func (c *Client) CreateHostBooking(ctx context.Context, sess session.Session, req models.HostBookingRequest) (*models.HostBooking, error) {
	var out models.HostBooking
	if err := c.doJSON(ctx, sess, http.MethodPost, "/api/host-bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserPackageBookings lists the user's package bookings.
func (c *Client) UserPackageBookings(ctx context.Context, sess session.Session, userID string) ([]models.PackageBooking, error) {
	var out []models.PackageBooking
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/bookings/user/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserHostBookings lists the user's host-listing bookings.
func (c *Client) UserHostBookings(ctx context.Context, sess session.Session, userID string) ([]models.HostBooking, error) {
	var out []models.HostBooking
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/host-bookings/user/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBooking fetches a single booking from its source.
func (c *Client) GetBooking(ctx context.Context, sess session.Session, source models.BookingSource, id string) (models.BookingRecord, error) {
	root, err := sourceRoot(source)
	if err != nil {
		return nil, err
	}
	path := root + "/" + url.PathEscape(id)
	if source == models.SourcePackage {
		var out models.PackageBooking
		if err := c.doJSON(ctx, sess, http.MethodGet, path, nil, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var out models.HostBooking
	if err := c.doJSON(ctx, sess, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelBooking asks the server to cancel a booking.
func (c *Client) CancelBooking(ctx context.Context, sess session.Session, source models.BookingSource, id string) error {
	root, err := sourceRoot(source)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, sess, http.MethodPut, root+"/"+url.PathEscape(id)+"/cancel", nil, nil)
}

// InvoiceURL is the link-out location of a booking invoice; the document is never fetched here.
func (c *Client) InvoiceURL(bookingID string) string {
	return c.baseURL + "/api/bookings/" + url.PathEscape(bookingID) + "/invoice"
}
