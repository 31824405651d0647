package crawl_test

import (
	"context"
	"fmt"

	"github.com/persistorai/degrees/internal/models"
)

// fakeProvider serves a fixed adjacency keyed by reference. Names default to
// the reference itself.
type fakeProvider struct {
	names       map[string]string
	adj         map[string][]string
	unavailable map[string]bool
	unnamed     map[string]bool
	failWith    error
	calls       []string
}

func newFakeProvider(adj map[string][]string) *fakeProvider {
	return &fakeProvider{
		names:       make(map[string]string),
		adj:         adj,
		unavailable: make(map[string]bool),
		unnamed:     make(map[string]bool),
	}
}

func (f *fakeProvider) name(ref string) string {
	if n, ok := f.names[ref]; ok {
		return n
	}

	return ref
}

func (f *fakeProvider) Neighbors(_ context.Context, ref string) ([]models.Association, error) {
	f.calls = append(f.calls, "neighbors:"+ref)

	if f.failWith != nil {
		return nil, f.failWith
	}

	if f.unavailable[ref] {
		return nil, fmt.Errorf("fake %s: %w", ref, models.ErrUnavailable)
	}

	out := make([]models.Association, 0, len(f.adj[ref]))
	for _, nb := range f.adj[ref] {
		a := models.Association{Ref: nb, Name: f.name(nb)}
		if f.unnamed[nb] {
			a.Name = ""
		}

		out = append(out, a)
	}

	return out, nil
}

func (f *fakeProvider) ResolveName(_ context.Context, ref string) (string, error) {
	f.calls = append(f.calls, "name:"+ref)

	if f.unavailable[ref] {
		return "", fmt.Errorf("fake %s: %w", ref, models.ErrUnavailable)
	}

	return f.name(ref), nil
}

// recordingObserver captures events for assertions.
type recordingObserver struct {
	levels   []int
	nodes    []string
	edges    []string
	warnings []models.Warning
}

func (o *recordingObserver) Level(degree, _ int) { o.levels = append(o.levels, degree) }
func (o *recordingObserver) Node(id string, _ int) { o.nodes = append(o.nodes, id) }
func (o *recordingObserver) Edge(source, target string) { o.edges = append(o.edges, source+"-"+target) }
func (o *recordingObserver) Warning(w models.Warning) { o.warnings = append(o.warnings, w) }
func (o *recordingObserver) Processed(int, int) {}
