package ws

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout     = 10 * time.Second
	wsReadLimit      = 4096
	clientSendBuffer = 256
	pingInterval     = 30 * time.Second
	pingTimeout      = 10 * time.Second
	maxMissedPongs   = int32(2)
)

// Client is one crawl stream connection. Messages queued on Send are written
// in order until the channel is closed, then the socket is closed normally.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	log  *logrus.Entry
}

// NewClient wraps conn.
func NewClient(conn *websocket.Conn, log *logrus.Entry) *Client {
	return &Client{conn: conn, send: make(chan []byte, clientSendBuffer), log: log}
}

// Send returns the channel feeding the connection. The producer closes it
// when the stream is complete.
func (c *Client) Send() chan<- []byte {
	return c.send
}

// ReadPump discards client messages and returns when the peer goes away.
// Reading is required for control frames to be processed.
func (c *Client) ReadPump(ctx context.Context) {
	c.conn.SetReadLimit(wsReadLimit)

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.log.WithField("status", status).Debug("client disconnected")
			}

			return
		}
	}
}

// WritePump writes queued messages and keeps the connection alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	var missedPongs atomic.Int32

	for {
		select {
		case <-ctx.Done():
			c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
			return
		case <-pingTicker.C:
			if c.sendPing(ctx, &missedPongs) {
				c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown
				return
			}
		case msg, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "crawl complete") //nolint:errcheck // best-effort
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()

			if err != nil {
				c.log.WithError(err).Debug("write failed")
				c.conn.CloseNow() //nolint:errcheck // best-effort close on teardown

				return
			}
		}
	}
}

// sendPing reports whether the connection should be dropped.
func (c *Client) sendPing(ctx context.Context, missedPongs *atomic.Int32) bool {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := c.conn.Ping(pingCtx)
	cancel()

	if err != nil {
		return missedPongs.Add(1) >= maxMissedPongs
	}

	missedPongs.Store(0)

	return false
}
