package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/wedding-rsvp/internal/auth"
	appErrors "github.com/charlesng35/wedding-rsvp/pkg/errors"
	"github.com/charlesng35/wedding-rsvp/pkg/metrics"
	"github.com/charlesng35/wedding-rsvp/pkg/response"
)

// LoginHandler checks the shared admin credentials.
type LoginHandler struct {
	admin *auth.Admin
}

func NewLoginHandler(admin *auth.Admin) (*LoginHandler, error) {
	if admin == nil {
		return nil, errors.New("login handler: admin is required")
	}
	return &LoginHandler{admin: admin}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/login
func (h *LoginHandler) Login(c *gin.Context) {
	var req loginRequest
	// A body that does not decode is treated as blank credentials.
	_ = c.ShouldBindJSON(&req)

	token, err := h.admin.Login(req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Error(c, appErrors.ErrInvalidCredentials)
			return
		}
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	response.Success(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}
