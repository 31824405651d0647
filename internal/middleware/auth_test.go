package middleware_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/httputil"
	"github.com/persistorai/degrees/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return l
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid token", "Bearer correct-horse-battery", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid token", "Bearer wrong", http.StatusUnauthorized},
		{"no bearer prefix", "correct-horse-battery", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.RequestID(quietLogger()))
			r.Use(middleware.APIKey(config.Secret("correct-horse-battery"), quietLogger()))
			r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("got %d, want %d", w.Code, tt.wantCode)
			}

			if w.Code != http.StatusUnauthorized {
				return
			}

			var body httputil.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding error body: %v", err)
			}

			if body.Code != "unauthorized" || body.RequestID != w.Header().Get(middleware.RequestIDHeader) {
				t.Errorf("error body = %+v", body)
			}
		})
	}
}

func TestAPIKey_DisabledWhenEmpty(t *testing.T) {
	r := gin.New()
	r.Use(middleware.APIKey("", quietLogger()))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", http.NoBody))

	if w.Code != http.StatusOK {
		t.Errorf("got %d, want 200", w.Code)
	}
}

func TestRequestID_IgnoresClientID(t *testing.T) {
	var seen string

	r := gin.New()
	r.Use(middleware.RequestID(quietLogger()))
	r.GET("/test", func(c *gin.Context) {
		seen = c.GetString(httputil.RequestIDKey)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "client-chosen")
	r.ServeHTTP(w, req)

	if seen == "" || seen == "client-chosen" {
		t.Errorf("request id = %q", seen)
	}

	if w.Header().Get(middleware.RequestIDHeader) != seen {
		t.Error("response header should carry the server request id")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(middleware.Logger(log))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decoding log line: %v", err)
	}

	if entry["level"] != "warning" || entry["path"] != "/boom" {
		t.Errorf("entry = %v", entry)
	}
}
