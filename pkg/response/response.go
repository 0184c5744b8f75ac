package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yafafa-lodge/service-booking/pkg/domain"
)

// Body is the envelope used by every JSON response of the service.
type Body struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success writes a 200 response carrying data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// BadRequest writes a 400 response with a message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Message: message})
}

// Fail writes an error response with an explicit status.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Body{Success: false, Message: message})
}

// Error maps a domain error to its HTTP status. Unknown errors become 500
// without leaking their text.
func Error(c *gin.Context, err error) {
	status := StatusFor(err)

	var domErr *domain.DomainError
	if !errors.As(err, &domErr) || status == http.StatusInternalServerError {
		c.JSON(status, Body{Success: false, Message: http.StatusText(status)})
		return
	}
	c.JSON(status, Body{Success: false, Message: domErr.Message, Fields: domErr.Fields})
}

// Abort writes err like Error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// StatusFor returns the HTTP status code for an error kind.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrSignatureMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, domain.ErrVerificationFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
