package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/httputil"
)

// APIKey requires "Authorization: Bearer <key>" on every request. An empty
// key disables the check.
func APIKey(key config.Secret, log *logrus.Logger) gin.HandlerFunc {
	want := []byte(key.Value())

	return func(c *gin.Context) {
		if len(want) == 0 {
			c.Next()
			return
		}

		got := ExtractBearerToken(c)
		if got == "" {
			httputil.RespondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		if subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			log.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(httputil.RequestIDKey),
			}).Warn("authentication failed: invalid api key")

			httputil.RespondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")

			return
		}

		c.Next()
	}
}

// ExtractBearerToken returns the bearer token of the request, or "".
func ExtractBearerToken(c *gin.Context) string {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return ""
	}

	return token
}
