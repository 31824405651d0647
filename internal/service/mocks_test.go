package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/crawl"
	"github.com/persistorai/degrees/internal/models"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)

	return l
}

// mapProvider serves a fixed adjacency where every reference is its own name.
type mapProvider struct {
	adj  map[string][]string
	down map[string]bool
}

func (p *mapProvider) ResolveName(_ context.Context, ref string) (string, error) {
	if _, ok := p.adj[ref]; !ok || p.down[ref] {
		return "", fmt.Errorf("%s: %w", ref, models.ErrUnavailable)
	}

	return ref, nil
}

func (p *mapProvider) Neighbors(_ context.Context, ref string) ([]models.Association, error) {
	if p.down[ref] {
		return nil, fmt.Errorf("%s: %w", ref, models.ErrUnavailable)
	}

	out := make([]models.Association, 0, len(p.adj[ref]))
	for _, nb := range p.adj[ref] {
		out = append(out, models.Association{Name: nb, Ref: nb})
	}

	return out, nil
}

// countingObserver tallies node and edge events.
type countingObserver struct {
	crawl.NopObserver
	nodes, edges int
}

func (o *countingObserver) Node(string, int) { o.nodes++ }
func (o *countingObserver) Edge(string, string) { o.edges++ }
