package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/wedding-rsvp/pkg/errors"
	"github.com/charlesng35/wedding-rsvp/pkg/response"
	appValidator "github.com/charlesng35/wedding-rsvp/pkg/validator"
)

// normalizer is implemented by request payloads that clean themselves up before validation.
type normalizer interface {
	normalize()
}

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// An empty body binds as an empty object. When binding or validation fails, an error
// response is written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if n, ok := any(dest).(normalizer); ok {
		n.normalize()
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, validationError(err))
		return false
	}

	return true
}

// validationError maps validation failures to an AppError. Blank required fields
// take precedence and produce ErrMissingFields.
func validationError(err error) *appErrors.AppError {
	var ve appValidator.ValidationErrors
	if !errors.As(err, &ve) {
		return appErrors.NewBadRequest("invalid request payload")
	}

	for _, failure := range ve {
		if failure.Tag == "required" || failure.Tag == "notblank" {
			return appErrors.ErrMissingFields
		}
	}
	return appErrors.NewBadRequest(formatValidationError(ve))
}

func formatValidationError(ve appValidator.ValidationErrors) string {
	if len(ve) == 0 {
		return "invalid request payload"
	}

	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		field := prettifyFieldName(failure.Field)
		switch failure.Tag {
		case "required", "notblank":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(failure.Param, " ", ", ")))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", field))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, failure.Param))
		default:
			if failure.Param != "" {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", field, failure.Tag))
			}
		}
	}
	return strings.Join(messages, "; ")
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	return name
}
