package ws

import (
	"errors"
	"sync"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/metrics"
)

// ErrTooManyStreams is returned by Register when the hub is full.
var ErrTooManyStreams = errors.New("ws: stream limit reached")

// Hub tracks active crawl streams and caps how many may run at once.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	limit   int
	closed  bool
	log     *logrus.Logger
}

// NewHub creates a Hub allowing up to limit concurrent streams.
func NewHub(limit int, log *logrus.Logger) *Hub {
	return &Hub{clients: make(map[*Client]struct{}), limit: limit, log: log}
}

// Register adds c to the hub.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || len(h.clients) >= h.limit {
		return ErrTooManyStreams
	}

	h.clients[c] = struct{}{}
	metrics.StreamConnections.Set(float64(len(h.clients)))
	h.log.WithField("total", len(h.clients)).Debug("stream registered")

	return nil
}

// Unregister removes c. It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	delete(h.clients, c)
	metrics.StreamConnections.Set(float64(len(h.clients)))
	h.log.WithField("total", len(h.clients)).Debug("stream unregistered")
}

// Count reports the number of active streams.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Shutdown closes every active stream and rejects new ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutting down") //nolint:errcheck // best-effort
	}
}
