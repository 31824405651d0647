package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coder/websocket"
)

// streamReadLimit bounds a single stream event.
const streamReadLimit = 1 << 20

// CrawlService runs crawls on the server.
type CrawlService struct {
	c *Client
}

// Summary runs a crawl and returns only its summary.
func (s *CrawlService) Summary(ctx context.Context, req CrawlRequest) (*CrawlSummary, error) {
	req.Format = "summary"

	var out CrawlSummary
	if err := s.c.post(ctx, "/api/v1/crawls", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Artifact runs a crawl and returns the encoded graph in req.Format
// (graphml when empty).
func (s *CrawlService) Artifact(ctx context.Context, req CrawlRequest) (*Artifact, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	body, header, err := s.c.send(ctx, http.MethodPost, "/api/v1/crawls", "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	warnings, _ := strconv.Atoi(header.Get("X-Degrees-Warnings"))

	return &Artifact{ContentType: header.Get("Content-Type"), Warnings: warnings, Body: body}, nil
}

// ErrStreamFailed is returned by Stream when the server reports a crawl error.
var ErrStreamFailed = errors.New("degrees: crawl failed")

// Stream runs a crawl over a WebSocket and calls fn for every event. It
// returns the final summary. A non-nil error from fn stops the stream.
func (s *CrawlService) Stream(ctx context.Context, req CrawlRequest, fn func(Event) error) (*CrawlSummary, error) {
	params := url.Values{}
	params.Set("reference", req.Reference)
	params.Set("degree", strconv.Itoa(req.Degree))
	if req.Name != "" {
		params.Set("name", req.Name)
	}

	wsURL := s.c.baseURL + "/api/v1/crawls/stream?" + params.Encode()
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	opts := &websocket.DialOptions{HTTPClient: s.c.httpClient, HTTPHeader: http.Header{}}
	if s.c.apiKey != "" {
		opts.HTTPHeader.Set("Authorization", "Bearer "+s.c.apiKey)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, opts)
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			return nil, &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: err.Error()}
		}
		return nil, fmt.Errorf("dial stream: %w", err)
	}
	defer conn.CloseNow() //nolint:errcheck // best-effort close on teardown

	conn.SetReadLimit(streamReadLimit)

	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("stream ended before completion: %w", err)
		}

		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}

		if err := fn(ev); err != nil {
			conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck // best-effort
			return nil, err
		}

		switch ev.Type {
		case "done":
			var summary CrawlSummary
			if err := json.Unmarshal(ev.Data, &summary); err != nil {
				return nil, fmt.Errorf("decode summary: %w", err)
			}
			conn.Close(websocket.StatusNormalClosure, "") //nolint:errcheck // best-effort
			return &summary, nil
		case "error":
			var e APIError
			_ = json.Unmarshal(ev.Data, &e)
			return nil, fmt.Errorf("%w: %s: %s", ErrStreamFailed, e.Code, e.Message)
		}
	}
}
