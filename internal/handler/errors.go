package handler

import (
	"net/http"

	"backend/internal/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps a business error kind to its HTTP status code.
func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindInvalidTransition, apperror.KindBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error as the standard envelope.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// Internal details stay in logs, not in responses
		msg = "internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

// actorID pulls the authenticated user's ID out of the gin context.
func actorID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
