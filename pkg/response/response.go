package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/wedding-rsvp/pkg/errors"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// Success writes a flat JSON object made of fields plus "success": true.
func Success(c *gin.Context, statusCode int, fields gin.H) {
	body := make(gin.H, len(fields)+1)
	for key, value := range fields {
		body[key] = value
	}
	body["success"] = true
	c.JSON(statusCode, body)
}

// Error writes a JSON error response derived from an AppError. Only store failures
// forward their underlying error text, as "message".
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	}
	if appErr.Code == appErrors.ErrStore.Code && appErr.Internal != nil {
		body.Message = appErr.Internal.Error()
	}

	c.JSON(status, body)
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
