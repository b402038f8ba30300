package admin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"eventphotos/internal/pkg/response"
)

const (
	CookieName = "admin_token"
	ctxAdmin   = "admin_username"
)

// RequireAdmin is the capability gate in front of every mutating admin route.
// The token comes from the session cookie or an "Authorization: Bearer" header.
func RequireAdmin(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Admin login required")
			c.Abort()
			return
		}

		username, err := service.Authenticate(token)
		if err != nil {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired session")
			c.Abort()
			return
		}

		c.Set(ctxAdmin, username)
		c.Next()
	}
}

// IsAdmin reports whether RequireAdmin accepted the request.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ctxAdmin) != ""
}

func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}
