package middleware

import (
	"errors"
	"net/http"

	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"request_id", c.GetString(response.RequestIDKey),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", errors.Unwrap(appErr))
			}
			message := appErr.Message
			if appErr.Code == http.StatusInternalServerError {
				message = "An unexpected error occurred. Please try again later."
			}
			response.Error(c, appErr.Code, message, appErr.Details)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("Internal server error",
			"request_id", c.GetString(response.RequestIDKey),
			"path", c.FullPath(),
			"error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
