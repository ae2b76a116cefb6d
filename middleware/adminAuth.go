package middleware

import (
	"net/http"

	"campstay/utils"

	"github.com/gin-gonic/gin"
)

// AdminOnlyMiddleware must run after SessionAuthMiddleware.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAdmin() {
			utils.JSONErrorBody(c, http.StatusForbidden, utils.ErrorResponse{
				Message: "Unauthorized admin access",
				Code:    "adminRequired",
			})
			return
		}
		c.Set("isAdmin", true)
		c.Next()
	}
}
