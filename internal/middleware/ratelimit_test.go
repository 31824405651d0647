package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/degrees/internal/middleware"
)

func limitedRouter(rl *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	return r
}

func hit(r http.Handler, ip string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.RemoteAddr = ip + ":1234"
	r.ServeHTTP(w, req)

	return w.Code
}

func TestRateLimiter_BlocksExceedingBurst(t *testing.T) {
	r := limitedRouter(middleware.NewRateLimiter(0.001, 2))

	for i := range 2 {
		if code := hit(r, "1.2.3.4"); code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, code)
		}
	}

	if code := hit(r, "1.2.3.4"); code != http.StatusTooManyRequests {
		t.Errorf("third request: got %d, want 429", code)
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	r := limitedRouter(middleware.NewRateLimiter(0.001, 1))

	if code := hit(r, "10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first client: got %d", code)
	}

	if code := hit(r, "10.0.0.2"); code != http.StatusOK {
		t.Errorf("second client should have its own bucket, got %d", code)
	}

	if code := hit(r, "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("first client again: got %d, want 429", code)
	}
}
