package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "user-admin-console/pkg/errors"
	"user-admin-console/pkg/logger"
)

// ErrorTemplate is the template ErrorBoundary renders for browser requests.
const ErrorTemplate = "error.html"

// ErrorBoundary renders errors that handlers attached with c.Error but did not
// answer themselves. JSON API routes get a JSON body, everything else the error
// page. Details of server errors are logged, not shown.
func ErrorBoundary(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := apperrors.StatusOf(err)
		message := err.Error()
		if status >= http.StatusInternalServerError {
			logger.WithContext(c.Request.Context(), log).Error("unhandled request error",
				zap.String("path", c.Request.URL.Path), zap.Error(err))
			message = "Something went wrong while handling this page."
		}

		requestID := logger.GetRequestID(c.Request.Context())
		if strings.HasPrefix(c.Request.URL.Path, "/v1/") {
			c.JSON(status, gin.H{"error": http.StatusText(status), "message": message, "requestId": requestID})
			return
		}

		c.HTML(status, ErrorTemplate, gin.H{
			"Title":     http.StatusText(status),
			"Status":    status,
			"Message":   message,
			"RequestID": requestID,
		})
	}
}
