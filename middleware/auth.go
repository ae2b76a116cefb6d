package middleware

import (
	"net/http"
	"strings"

	"campstay/services/session"
	"campstay/utils"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

// SessionAuthMiddleware turns the bearer token into a session on the context.
// Requests without a usable token get 401 and the login URL to redirect to.
func SessionAuthMiddleware(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(c, loginURL, "Missing or invalid Authorization header")
			return
		}
		sess := session.FromBearer(strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer ")))
		if !sess.IsAuthenticated() {
			unauthorized(c, loginURL, "Session expired or invalid")
			return
		}

		c.Set(sessionKey, sess)
		c.Set("userID", sess.UserID())
		c.Next()
	}
}

// GetSession returns the session set by SessionAuthMiddleware, or nil.
func GetSession(c *gin.Context) *session.TokenSession {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.TokenSession)
	return sess
}

func unauthorized(c *gin.Context, loginURL, details string) {
	utils.JSONErrorBody(c, http.StatusUnauthorized, utils.ErrorResponse{
		Message: "Authentication required",
		Details: details,
		Code:    "sessionRequired",
		Login:   loginURL,
	})
}
