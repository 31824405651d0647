package provider

import (
	"context"
	"errors"

	"github.com/persistorai/degrees/internal/metrics"
	"github.com/persistorai/degrees/internal/models"
)

// instrumented counts provider calls by outcome.
type instrumented struct {
	next Provider
	name string
}

// Instrument wraps next so that every call is counted in
// metrics.ProviderRequests under the given provider label.
func Instrument(next Provider, name string) Provider {
	return &instrumented{next: next, name: name}
}

func (p *instrumented) ResolveName(ctx context.Context, ref string) (string, error) {
	name, err := p.next.ResolveName(ctx, ref)
	p.observe("name", err)

	return name, err
}

func (p *instrumented) Neighbors(ctx context.Context, ref string) ([]models.Association, error) {
	list, err := p.next.Neighbors(ctx, ref)
	p.observe("neighbors", err)

	return list, err
}

func (p *instrumented) observe(op string, err error) {
	metrics.ProviderRequests.WithLabelValues(p.name, op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, models.ErrUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
