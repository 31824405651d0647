package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/ws"
)

func TestRecorder_EncodesEvents(t *testing.T) {
	out := make(chan []byte, 8)
	rec := ws.NewRecorder(context.Background(), out)

	rec.Level(1, 2)
	rec.Node("Bob", 1)
	rec.Edge("Alice", "Bob")
	rec.Warning(models.Warning{Degree: 1, Ref: "x", Message: "gone"})
	rec.Processed(1, 1)
	close(out)

	var got []ws.Event
	for msg := range out {
		var ev ws.Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("decoding event: %v", err)
		}

		got = append(got, ev)
	}

	wantTypes := []string{ws.EventLevel, ws.EventNode, ws.EventEdge, ws.EventWarning}
	if len(got) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(got), len(wantTypes))
	}

	for i, ev := range got {
		if ev.Type != wantTypes[i] || ev.Seq != uint64(i+1) {
			t.Errorf("event %d = %s seq %d", i, ev.Type, ev.Seq)
		}
	}

	var edge ws.EdgeData
	if err := json.Unmarshal(got[2].Data, &edge); err != nil || edge.Source != "Alice" || edge.Target != "Bob" {
		t.Errorf("edge data = %+v, %v", edge, err)
	}
}

func TestRecorder_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := ws.NewRecorder(ctx, make(chan []byte))

	if rec.Send(ws.EventDone, struct{}{}) {
		t.Error("send on a cancelled recorder should fail")
	}

	if rec.Dropped() != 1 {
		t.Errorf("dropped = %d, want 1", rec.Dropped())
	}
}

func TestHub_Limit(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	h := ws.NewHub(1, log)
	a := ws.NewClient(nil, log.WithField("stream", "a"))
	b := ws.NewClient(nil, log.WithField("stream", "b"))

	if err := h.Register(a); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := h.Register(b); !errors.Is(err, ws.ErrTooManyStreams) {
		t.Errorf("expected ErrTooManyStreams, got %v", err)
	}

	h.Unregister(a)
	h.Unregister(a)

	if h.Count() != 0 {
		t.Errorf("count = %d", h.Count())
	}

	if err := h.Register(b); err != nil {
		t.Errorf("Register after unregister: %v", err)
	}

	h.Unregister(b)
	h.Shutdown()

	if err := h.Register(a); !errors.Is(err, ws.ErrTooManyStreams) {
		t.Errorf("closed hub should reject streams, got %v", err)
	}
}
