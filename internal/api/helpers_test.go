package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/persistorai/degrees/internal/api"
	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/httputil"
)

const testAPIKey = config.Secret("test-key-0123456789")

func newTestRouter(runner api.CrawlRunner, key config.Secret) http.Handler {
	return api.NewRouter(&api.RouterDeps{
		Log:         testLogger(),
		Crawls:      runner,
		Provider:    "static",
		Version:     "test",
		APIKey:      key,
		CORSOrigins: []string{"http://localhost:3002"},
	})
}

// doRequest performs an HTTP request against the router and returns the recorder.
func doRequest(r http.Handler, method, path, body string, key config.Secret) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}

	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key.Value())
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()

	var body httputil.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid error JSON %q: %v", w.Body.String(), err)
	}

	return body
}
