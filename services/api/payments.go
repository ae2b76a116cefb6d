package api

import (
	"context"
	"net/http"

	"campstay/models"
	"campstay/services/session"
)

// CreatePaymentOrder opens a payment-provider order for the given amount.
func (c *Client) CreatePaymentOrder(ctx context.Context, sess session.Session, req models.PaymentOrderRequest) (*models.PaymentOrder, error) {
	var out models.PaymentOrder
	if err := c.doJSON(ctx, sess, http.MethodPost, "/api/payments/order", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment submits a provider callback proof for server-side verification.
func (c *Client) VerifyPayment(ctx context.Context, sess session.Session, req models.VerifyPaymentRequest) (*models.VerifyPaymentResult, error) {
	var out models.VerifyPaymentResult
	if err := c.doJSON(ctx, sess, http.MethodPost, "/api/payments/verify", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
