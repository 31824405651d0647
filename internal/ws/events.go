// Package ws streams crawl progress to WebSocket clients.
package ws

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/persistorai/degrees/internal/models"
)

// Event types sent to stream clients.
const (
	EventLevel   = "level"
	EventNode    = "node"
	EventEdge    = "edge"
	EventWarning = "warning"
	EventDone    = "done"
	EventError   = "error"
)

// Event is one message on a crawl stream. Seq increases by one per event.
type Event struct {
	Type string          `json:"type"`
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}

// LevelData announces the start of a degree.
type LevelData struct {
	Degree int `json:"degree"`
	Queued int `json:"queued"`
}

// NodeData is a newly discovered node.
type NodeData struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
}

// EdgeData is a newly recorded edge.
type EdgeData struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ErrorData reports a fatal crawl failure.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Recorder turns crawl events into encoded stream messages. It implements
// crawl.Observer. Sends block while the client's buffer is full and give up
// once ctx is done.
type Recorder struct {
	ctx  context.Context //nolint:containedctx // observer callbacks carry no context.
	out  chan<- []byte
	seq  atomic.Uint64
	now  func() time.Time
	lost atomic.Uint64
}

// NewRecorder writes encoded events to out until ctx is done.
func NewRecorder(ctx context.Context, out chan<- []byte) *Recorder {
	return &Recorder{ctx: ctx, out: out, now: time.Now}
}

// Level implements crawl.Observer.
func (r *Recorder) Level(degree, queued int) {
	r.Send(EventLevel, LevelData{Degree: degree, Queued: queued})
}

// Node implements crawl.Observer.
func (r *Recorder) Node(id string, degree int) {
	r.Send(EventNode, NodeData{ID: id, Degree: degree})
}

// Edge implements crawl.Observer.
func (r *Recorder) Edge(source, target string) {
	r.Send(EventEdge, EdgeData{Source: source, Target: target})
}

// Warning implements crawl.Observer.
func (r *Recorder) Warning(w models.Warning) {
	r.Send(EventWarning, w)
}

// Processed implements crawl.Observer. Progress counts are not streamed.
func (r *Recorder) Processed(int, int) {}

// Send encodes data as an event of the given type and queues it. It reports
// false when the event was dropped because ctx ended.
func (r *Recorder) Send(eventType string, data any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		r.lost.Add(1)
		return false
	}

	msg, err := json.Marshal(Event{Type: eventType, Seq: r.seq.Add(1), Data: raw, Time: r.now().UTC()})
	if err != nil {
		r.lost.Add(1)
		return false
	}

	select {
	case r.out <- msg:
		return true
	case <-r.ctx.Done():
		r.lost.Add(1)
		return false
	}
}

// Dropped reports how many events could not be delivered.
func (r *Recorder) Dropped() uint64 {
	return r.lost.Load()
}
