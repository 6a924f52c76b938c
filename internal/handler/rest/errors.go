package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"dns-manager-backend/internal/domain"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:   http.StatusBadRequest,
	domain.KindConflict:     http.StatusConflict,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindProvider:     http.StatusBadGateway,
	domain.KindStore:        http.StatusInternalServerError,
	domain.KindUnauthorized: http.StatusUnauthorized,
}

// statusFor maps a classified error to an HTTP status
func statusFor(err error) int {
	if status, ok := kindStatus[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeError answers with {success:false, message}. Unclassified errors
// keep their details out of the response.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)

	message := err.Error()
	if domain.KindOf(err) == "" {
		message = "Internal server error"
	}
	c.JSON(status, errorResponse{Success: false, Message: message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorResponse{Success: false, Message: message})
}


// bindError answers a failed ShouldBindJSON with the offending fields
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		badRequest(c, "invalid request body")
		return
	}
	messages := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		return fieldMessage(fe)
	})
	badRequest(c, strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := lo.CamelCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " is not valid"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
