// Package middleware provides the gin middleware of the degrees server.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/httputil"
)

// RequestIDHeader carries the request ID on responses.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a fresh UUID. A client supplied
// X-Request-ID is kept only as client_request_id.
func RequestID(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()

		if clientID := c.GetHeader(RequestIDHeader); clientID != "" {
			log.WithFields(logrus.Fields{"request_id": id, "client_request_id": clientID}).Debug("client request id")
			c.Set("client_request_id", clientID)
		}

		c.Set(httputil.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// Logger logs one line per request at info level, or warn for 5xx.
func Logger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"client":     c.ClientIP(),
			"request_id": c.GetString(httputil.RequestIDKey),
		})

		if c.Writer.Status() >= 500 {
			entry.Warn("request")
			return
		}

		entry.Info("request")
	}
}
