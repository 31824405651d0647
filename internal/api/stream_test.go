package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/persistorai/degrees/internal/api"
	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/ws"
)

func readStream(t *testing.T, url string) ([]ws.Event, websocket.StatusCode) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow() //nolint:errcheck // test teardown

	var events []ws.Event

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			return events, websocket.CloseStatus(err)
		}

		var ev ws.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}

		events = append(events, ev)
	}
}

func streamURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/crawls/stream?" + query
}

func TestStream_Crawl(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(fixtureService(), ""))
	defer srv.Close()

	events, status := readStream(t, streamURL(srv, "reference=UC1&degree=2"))
	if status != websocket.StatusNormalClosure {
		t.Errorf("close status = %v", status)
	}

	counts := map[string]int{}
	for i, ev := range events {
		counts[ev.Type]++

		if ev.Seq != uint64(i+1) {
			t.Errorf("event %d has seq %d", i, ev.Seq)
		}
	}

	if counts[ws.EventNode] != 4 || counts[ws.EventEdge] != 3 || counts[ws.EventLevel] != 2 {
		t.Errorf("event counts = %v", counts)
	}

	last := events[len(events)-1]
	if last.Type != ws.EventDone {
		t.Fatalf("last event = %s", last.Type)
	}

	var s models.CrawlSummary
	if err := json.Unmarshal(last.Data, &s); err != nil || s.Nodes != 4 {
		t.Errorf("summary = %+v, %v", s, err)
	}
}

func TestStream_CrawlFailure(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(fixtureService(), ""))
	defer srv.Close()

	events, _ := readStream(t, streamURL(srv, "reference=UC404&degree=1"))
	if len(events) == 0 {
		t.Fatal("expected an error event")
	}

	last := events[len(events)-1]
	if last.Type != ws.EventError {
		t.Fatalf("last event = %s", last.Type)
	}

	var data ws.ErrorData
	if err := json.Unmarshal(last.Data, &data); err != nil || data.Code != api.ErrCodeNotFound {
		t.Errorf("error data = %+v, %v", data, err)
	}
}

func TestStream_ValidatesBeforeUpgrade(t *testing.T) {
	r := newTestRouter(fixtureService(), "")

	for _, query := range []string{"reference=UC1&degree=x", "degree=1", "reference=UC1&degree=12"} {
		w := doRequest(r, http.MethodGet, "/api/v1/crawls/stream?"+query, "", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", query, w.Code)
		}
	}
}
