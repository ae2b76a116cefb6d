package api

import (
	"context"
	"net/http"
	"net/url"

	"campstay/models"
	"campstay/services/session"
)

// GetProfile fetches a user profile, used to prefill drafts and address pushes.
func (c *Client) GetProfile(ctx context.Context, sess session.Session, userID string) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.doJSON(ctx, sess, http.MethodGet, "/api/users/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
