package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/persistorai/degrees/internal/metrics"
	"github.com/persistorai/degrees/internal/models"
)

func chain() *mapProvider {
	return &mapProvider{
		adj: map[string][]string{
			"a": {"b", "c"},
			"b": {"a", "d"},
			"c": {"a"},
			"d": {"b"},
		},
		down: map[string]bool{},
	}
}

func TestCrawlService_Crawl(t *testing.T) {
	svc := NewCrawlService(chain(), quietLogger(), 6)
	svc.newID = func() string { return "run-1" }

	ok := testutil.ToFloat64(metrics.CrawlsTotal.WithLabelValues(metrics.OutcomeOK))

	obs := &countingObserver{}

	run, err := svc.Crawl(context.Background(), CrawlRequest{Reference: " a ", Degree: 2}, obs)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	s := run.Summary
	if s.RunID != "run-1" || s.GraphID != "a" || s.Seed != "a" || s.MaxDegree != 2 {
		t.Errorf("summary = %+v", s)
	}

	if s.Nodes != 4 || s.Edges != 3 {
		t.Errorf("nodes=%d edges=%d, want 4 and 3", s.Nodes, s.Edges)
	}

	if obs.nodes != 4 || obs.edges != 3 {
		t.Errorf("observer saw %d nodes %d edges", obs.nodes, obs.edges)
	}

	if got := testutil.ToFloat64(metrics.CrawlsTotal.WithLabelValues(metrics.OutcomeOK)) - ok; got != 1 {
		t.Errorf("ok crawls delta = %v", got)
	}
}

func TestCrawlService_Validate(t *testing.T) {
	svc := NewCrawlService(chain(), quietLogger(), 3)

	tests := []struct {
		name  string
		req   CrawlRequest
		field string
	}{
		{"empty reference", CrawlRequest{Reference: "  ", Degree: 1}, "reference"},
		{"negative degree", CrawlRequest{Reference: "a", Degree: -1}, "degree"},
		{"over cap", CrawlRequest{Reference: "a", Degree: 4}, "degree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Crawl(context.Background(), tt.req)

			var ce *models.ConfigError
			if !errors.As(err, &ce) || ce.Field != tt.field {
				t.Errorf("expected ConfigError on %s, got %v", tt.field, err)
			}
		})
	}

	if err := NewCrawlService(chain(), quietLogger(), 0).Validate(&CrawlRequest{Reference: "a", Degree: 40}); err != nil {
		t.Errorf("zero cap should not bound degree: %v", err)
	}
}

func TestCrawlService_SeedUnavailable(t *testing.T) {
	p := chain()
	p.down["a"] = true

	failed := testutil.ToFloat64(metrics.CrawlsTotal.WithLabelValues(metrics.OutcomeUnavailable))

	_, err := NewCrawlService(p, quietLogger(), 0).Crawl(context.Background(), CrawlRequest{Reference: "a", Degree: 1})
	if !errors.Is(err, models.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if got := testutil.ToFloat64(metrics.CrawlsTotal.WithLabelValues(metrics.OutcomeUnavailable)) - failed; got != 1 {
		t.Errorf("unavailable crawls delta = %v", got)
	}
}

func TestCrawlService_WarningsInSummary(t *testing.T) {
	p := chain()
	p.down["b"] = true

	run, err := NewCrawlService(p, quietLogger(), 0).Crawl(context.Background(), CrawlRequest{Reference: "a", Name: "Alice", Degree: 2})
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	if len(run.Summary.Warnings) != 1 || run.Summary.Warnings[0].Ref != "b" {
		t.Errorf("warnings = %+v", run.Summary.Warnings)
	}

	if run.Summary.GraphID != "Alice" {
		t.Errorf("graph id = %q", run.Summary.GraphID)
	}
}

func TestCrawlService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cancelled := testutil.ToFloat64(metrics.CrawlsTotal.WithLabelValues(metrics.OutcomeCancelled))

	_, err := NewCrawlService(chain(), quietLogger(), 0).Crawl(ctx, CrawlRequest{Reference: "a", Name: "a", Degree: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if got := testutil.ToFloat64(metrics.CrawlsTotal.WithLabelValues(metrics.OutcomeCancelled)) - cancelled; got != 1 {
		t.Errorf("cancelled crawls delta = %v", got)
	}
}
