package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents a structured error response from the degrees API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("degrees: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("degrees: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func statusIs(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == status
}

// IsNotFound reports whether the seed reference could not be resolved.
func IsNotFound(err error) bool { return statusIs(err, http.StatusNotFound) }

// IsUnauthorized reports whether the API key was missing or rejected.
func IsUnauthorized(err error) bool { return statusIs(err, http.StatusUnauthorized) }

// IsRateLimited reports whether the server rate limited the request.
func IsRateLimited(err error) bool { return statusIs(err, http.StatusTooManyRequests) }

// IsFormatError reports whether an uploaded GraphML document was rejected.
func IsFormatError(err error) bool { return statusIs(err, http.StatusUnprocessableEntity) }

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
