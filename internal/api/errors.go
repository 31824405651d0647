package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/httputil"
	"github.com/persistorai/degrees/internal/metrics"
	"github.com/persistorai/degrees/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeResolutionFailed = "resolution_failed"
	ErrCodeFormatError      = "format_error"
	ErrCodeInternalError    = "internal_error"
	ErrCodeUnavailable      = "unavailable"
)

// respondError writes a standardized JSON error response and counts it.
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// classifyError maps a service error onto an HTTP status and error code.
func classifyError(err error) (status int, code, message string) {
	var (
		cfgErr *models.ConfigError
		resErr *models.ResolutionError
		fmtErr *models.FormatError
	)

	switch {
	case errors.As(err, &cfgErr), errors.Is(err, models.ErrInvalidConfig):
		return http.StatusBadRequest, ErrCodeInvalidRequest, err.Error()
	case errors.As(err, &fmtErr):
		return http.StatusUnprocessableEntity, ErrCodeFormatError, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeUnavailable, "crawl timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrCodeUnavailable, "crawl cancelled"
	case errors.As(err, &resErr) && errors.Is(err, models.ErrUnavailable):
		return http.StatusNotFound, ErrCodeNotFound, err.Error()
	case errors.As(err, &resErr):
		return http.StatusBadGateway, ErrCodeResolutionFailed, err.Error()
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "internal error"
	}
}

// respondServiceError logs err and writes the matching error response.
func respondServiceError(c *gin.Context, log *logrus.Logger, err error) {
	status, code, message := classifyError(err)

	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("request_id", c.GetString(httputil.RequestIDKey)).Error("request failed")
	}

	respondError(c, status, code, message)
}
