package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/httputil"
	"github.com/persistorai/degrees/internal/service"
	"github.com/persistorai/degrees/internal/ws"
)

// StreamHandler runs crawls over a WebSocket, streaming events as they happen.
type StreamHandler struct {
	runner      CrawlRunner
	hub         *ws.Hub
	log         *logrus.Logger
	timeout     time.Duration
	corsOrigins []string
}

// NewStreamHandler creates a StreamHandler. CORS origins double as the
// accepted WebSocket origin patterns.
func NewStreamHandler(runner CrawlRunner, hub *ws.Hub, log *logrus.Logger, timeout time.Duration, corsOrigins []string) *StreamHandler {
	return &StreamHandler{runner: runner, hub: hub, log: log, timeout: timeout, corsOrigins: corsOrigins}
}

// Stream handles GET /api/v1/crawls/stream?reference=&degree=&name=.
// Requests are validated before the upgrade so that bad input gets a plain
// JSON error.
func (h *StreamHandler) Stream(c *gin.Context) {
	degree, err := strconv.Atoi(c.DefaultQuery("degree", "1"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "degree must be an integer")
		return
	}

	req := service.CrawlRequest{Reference: c.Query("reference"), Name: c.Query("name"), Degree: degree}
	if err := h.runner.Validate(&req); err != nil {
		respondServiceError(c, h.log, err)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns:       h.corsOrigins,
		CompressionMode:      websocket.CompressionContextTakeover,
		CompressionThreshold: 128,
	})
	if err != nil {
		h.log.WithError(err).Error("websocket accept failed")
		return
	}

	log := h.log.WithFields(logrus.Fields{"request_id": c.GetString(httputil.RequestIDKey), "ref": req.Reference})
	client := ws.NewClient(conn, log)

	if err := h.hub.Register(client); err != nil {
		conn.Close(websocket.StatusTryAgainLater, "too many streams") //nolint:errcheck // best-effort
		return
	}
	defer h.hub.Unregister(client)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		defer cancel()

		client.ReadPump(ctx)
	}()

	go func() {
		defer wg.Done()

		client.WritePump(ctx)
	}()

	h.run(ctx, client, req)
	wg.Wait()
}

// run performs the crawl and finishes the stream with a done or error event.
func (h *StreamHandler) run(ctx context.Context, client *ws.Client, req service.CrawlRequest) {
	send := client.Send()
	defer close(send)

	rec := ws.NewRecorder(ctx, send)

	run, err := h.runner.Crawl(ctx, req, rec)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}

		_, code, message := classifyError(err)
		rec.Send(ws.EventError, ws.ErrorData{Code: code, Message: message})

		return
	}

	rec.Send(ws.EventDone, run.Summary)
}
