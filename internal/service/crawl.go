// Package service runs crawls on behalf of the CLI and the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/crawl"
	"github.com/persistorai/degrees/internal/metrics"
	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/provider"
)

// CrawlRequest describes one crawl.
type CrawlRequest struct {
	Reference string `json:"reference"`
	Name      string `json:"name,omitempty"`
	Degree    int    `json:"degree"`
}

// Run is a finished crawl with its summary.
type Run struct {
	*crawl.Result
	Summary models.CrawlSummary
}

// CrawlService validates requests and drives the scheduler with logging and
// metrics attached.
type CrawlService struct {
	provider  provider.Provider
	log       *logrus.Logger
	maxDegree int
	newID     func() string
}

// NewCrawlService creates a CrawlService. Requests deeper than maxDegree are
// rejected; zero disables the cap.
func NewCrawlService(p provider.Provider, log *logrus.Logger, maxDegree int) *CrawlService {
	return &CrawlService{
		provider:  p,
		log:       log,
		maxDegree: maxDegree,
		newID:     func() string { return uuid.NewString() },
	}
}

// Validate normalises req and rejects it when unusable.
func (s *CrawlService) Validate(req *CrawlRequest) error {
	seed := models.Seed{Ref: req.Reference, Name: req.Name}
	if err := seed.Validate(); err != nil {
		return err
	}

	req.Reference, req.Name = seed.Ref, seed.Name

	if req.Degree < 0 {
		return &models.ConfigError{Field: "degree", Reason: fmt.Sprintf("must be zero or greater, got %d", req.Degree)}
	}

	if s.maxDegree > 0 && req.Degree > s.maxDegree {
		return &models.ConfigError{Field: "degree", Reason: fmt.Sprintf("must not exceed %d, got %d", s.maxDegree, req.Degree)}
	}

	return nil
}

// Crawl validates req and runs it. Extra observers receive every crawl
// event alongside the logger and metrics.
func (s *CrawlService) Crawl(ctx context.Context, req CrawlRequest, observers ...crawl.Observer) (*Run, error) {
	if err := s.Validate(&req); err != nil {
		return nil, err
	}

	runID := s.newID()
	log := s.log.WithFields(logrus.Fields{"run_id": runID, "ref": req.Reference, "degree": req.Degree})

	opts := []crawl.Option{
		crawl.WithObserver(crawl.NewLogObserver(s.log, runID)),
		crawl.WithObserver(metrics.CrawlObserver{}),
	}
	for _, o := range observers {
		opts = append(opts, crawl.WithObserver(o))
	}

	log.Info("crawl started")

	start := time.Now()
	res, err := crawl.NewScheduler(s.provider, opts...).Crawl(ctx, models.Seed{Ref: req.Reference, Name: req.Name}, req.Degree)
	metrics.CrawlDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CrawlsTotal.WithLabelValues(crawlOutcome(err)).Inc()
		log.WithError(err).Error("crawl failed")

		return nil, err
	}

	metrics.CrawlsTotal.WithLabelValues(metrics.OutcomeOK).Inc()

	run := &Run{Result: res, Summary: Summarize(runID, req, res)}

	log.WithFields(logrus.Fields{
		"nodes":    run.Summary.Nodes,
		"edges":    run.Summary.Edges,
		"warnings": len(run.Summary.Warnings),
	}).Info("crawl finished")

	return run, nil
}

// Summarize describes res for API responses and stream events.
func Summarize(runID string, req CrawlRequest, res *crawl.Result) models.CrawlSummary {
	return models.CrawlSummary{
		RunID:        runID,
		GraphID:      res.Graph.ID,
		Seed:         req.Reference,
		MaxDegree:    req.Degree,
		Nodes:        res.Graph.NodeCount(),
		Edges:        res.Graph.EdgeCount(),
		Processed:    res.Stats.Processed,
		Warnings:     res.Warnings,
		DurationSecs: res.Stats.Duration.Seconds(),
	}
}

func crawlOutcome(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCancelled
	case errors.Is(err, models.ErrUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
