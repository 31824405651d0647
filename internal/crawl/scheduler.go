// Package crawl builds an association graph by expanding outward from a seed
// one degree of separation at a time.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/persistorai/degrees/internal/graph"
	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/provider"
)

// Stats describes the work a crawl performed.
type Stats struct {
	Levels        int
	Processed     int
	ProviderCalls int
	Warnings      int
	Duration      time.Duration
}

// Result is the outcome of a successful crawl.
type Result struct {
	Graph    *graph.Graph
	Warnings []models.Warning
	Stats    Stats
}

// Scheduler drives the level-ordered expansion. It holds no per-crawl state
// and may be reused for multiple sequential or concurrent crawls.
type Scheduler struct {
	provider  provider.Provider
	observers []Observer
	graphID   string
	now       func() time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver registers an observer for crawl events.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) { s.observers = append(s.observers, o) }
}

// WithGraphID sets the id of produced graphs. The seed name is used otherwise.
func WithGraphID(id string) Option {
	return func(s *Scheduler) { s.graphID = id }
}

// NewScheduler returns a Scheduler backed by p.
func NewScheduler(p provider.Provider, opts ...Option) *Scheduler {
	s := &Scheduler{provider: p, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// run is the mutable state of one crawl.
type run struct {
	*Scheduler
	obs      multiObserver
	g        *graph.Graph
	visited  map[string]struct{}
	staged   map[string]struct{}
	next     []models.Association
	warnings []models.Warning
	stats    Stats
}

// Crawl expands seed out to maxDegree hops. Every node's degree attribute is
// its shortest distance from the seed. Only failures to resolve the seed
// itself are fatal; other unavailable references become warnings.
func (s *Scheduler) Crawl(ctx context.Context, seed models.Seed, maxDegree int) (*Result, error) {
	if maxDegree < 0 {
		return nil, &models.ConfigError{Field: "degree", Reason: "must be zero or greater"}
	}

	if seed.Ref == "" {
		return nil, &models.ConfigError{Field: "reference", Reason: models.ErrMissingRef.Error()}
	}

	start := s.now()
	r := &run{
		Scheduler: s,
		obs:       multiObserver(s.observers),
		visited:   make(map[string]struct{}),
		staged:    make(map[string]struct{}),
	}

	if seed.Name == "" {
		r.stats.ProviderCalls++

		name, err := s.provider.ResolveName(ctx, seed.Ref)
		if err != nil {
			return nil, asResolutionError("name", seed.Ref, err)
		}

		seed.Name = name
	}

	id := s.graphID
	if id == "" {
		id = seed.Name
	}

	r.g = graph.New(id, false)
	r.addNode(seed.Name, 0)

	queue := []models.Association{{Name: seed.Name, Ref: seed.Ref}}

	for level := 1; level <= maxDegree && len(queue) > 0; level++ {
		r.stats.Levels++
		r.obs.Level(level, len(queue))

		for i, entry := range queue {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("crawl interrupted at degree %d: %w", level, err)
			}

			if err := r.expand(ctx, entry, level, level < maxDegree, level == 1); err != nil {
				return nil, err
			}

			r.stats.Processed++
			r.obs.Processed(level, i+1)
		}

		queue = r.drainStaged()
	}

	r.stats.Warnings = len(r.warnings)
	r.stats.Duration = s.now().Sub(start)

	return &Result{Graph: r.g, Warnings: r.warnings, Stats: r.stats}, nil
}

// expand records every neighbor of entry. Neighbors found at the final level
// are added to the graph but not staged.
func (r *run) expand(ctx context.Context, entry models.Association, level int, stage, isSeed bool) error {
	r.visited[entry.Ref] = struct{}{}
	r.stats.ProviderCalls++

	neighbors, err := r.provider.Neighbors(ctx, entry.Ref)
	if err != nil {
		if isSeed || !errors.Is(err, models.ErrUnavailable) {
			return asResolutionError("neighbors", entry.Ref, err)
		}

		r.warn(level, entry.Ref, fmt.Sprintf("skipping %q: %v", entry.Name, err))

		return nil
	}

	for _, nb := range neighbors {
		if nb.Ref == "" && nb.Name == "" {
			continue
		}

		if nb.Name == "" {
			r.stats.ProviderCalls++

			name, err := r.provider.ResolveName(ctx, nb.Ref)
			if err != nil {
				if !errors.Is(err, models.ErrUnavailable) {
					return fmt.Errorf("resolving neighbor %q of %q: %w", nb.Ref, entry.Ref, err)
				}

				r.warn(level, nb.Ref, fmt.Sprintf("skipping neighbor of %q: %v", entry.Name, err))

				continue
			}

			nb.Name = name
		}

		if nb.Name == entry.Name {
			continue
		}

		r.addNode(nb.Name, level)

		inserted, err := r.g.AddEdge(entry.Name, nb.Name, graph.Attributes{})
		if err != nil {
			return fmt.Errorf("linking %q to %q: %w", entry.Name, nb.Name, err)
		}

		if inserted {
			r.obs.Edge(entry.Name, nb.Name)
		}

		if stage && nb.Ref != "" {
			r.stage(nb)
		}
	}

	return nil
}

func (r *run) addNode(id string, degree int) {
	var attrs graph.Attributes
	attrs.SetInt(graph.DegreeKey, degree)

	if r.g.AddNode(id, attrs) {
		r.obs.Node(id, degree)
	}
}

func (r *run) stage(a models.Association) {
	if _, ok := r.visited[a.Ref]; ok {
		return
	}

	if _, ok := r.staged[a.Ref]; ok {
		return
	}

	r.staged[a.Ref] = struct{}{}
	r.next = append(r.next, a)
}

// drainStaged turns the staged set into the next queue, dropping anything
// visited since it was staged.
func (r *run) drainStaged() []models.Association {
	queue := make([]models.Association, 0, len(r.next))
	for _, a := range r.next {
		if _, ok := r.visited[a.Ref]; ok {
			continue
		}

		queue = append(queue, a)
	}

	r.next = nil
	r.staged = make(map[string]struct{})

	return queue
}

func (r *run) warn(level int, ref, msg string) {
	w := models.Warning{Degree: level, Ref: ref, Message: msg}
	r.warnings = append(r.warnings, w)
	r.obs.Warning(w)
}

func asResolutionError(op, ref string, err error) error {
	var resErr *models.ResolutionError
	if errors.As(err, &resErr) {
		return err
	}

	return &models.ResolutionError{Ref: ref, Op: op, Err: err}
}
