package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/wedding-rsvp/internal/auth"
	"github.com/charlesng35/wedding-rsvp/pkg/errors"
	"github.com/charlesng35/wedding-rsvp/pkg/response"
)

// CtxAdminKey marks requests that passed the admin bearer check.
const CtxAdminKey = "admin"

// AdminAuth rejects requests whose bearer token is not the admin token. It runs
// before any handler touches the store.
func AdminAuth(admin *auth.Admin) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || !admin.Validate(token) {
			c.Header("WWW-Authenticate", "Bearer")
			response.Abort(c, errors.ErrUnauthorized)
			return
		}

		c.Set(CtxAdminKey, true)
		c.Next()
	}
}

func bearerToken(authz string) (string, bool) {
	if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(authz[7:])
	return token, token != ""
}
