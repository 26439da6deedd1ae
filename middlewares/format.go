package middlewares

import (
	"net/http"

	"TeleClinic/logging"
	"TeleClinic/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalMessage = "internal server error"

// HttpError logs an error and writes an HTTP error response to the client.
func HttpError(c *gin.Context, message string, status int, err error) {
	logger := logging.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug(message, zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch services.KindOf(err) {
	case services.ErrValidation, services.ErrInvalidToken:
		return http.StatusBadRequest
	case services.ErrDuplicate:
		return http.StatusConflict
	case services.ErrNotFound:
		return http.StatusNotFound
	case services.ErrUnauthorized:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// RespondError writes a service error. Internal causes are logged and never sent to the client.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = internalMessage
	}
	HttpError(c, message, status, err)
}
