// Package provider resolves entity references into display names and
// neighbor lists. Adapters cover a YAML fixture, a JSON association API,
// HTML page scraping, and a persistor knowledge-graph database.
package provider

import (
	"context"
	"fmt"

	"github.com/persistorai/degrees/internal/models"
)

// Provider supplies association data for the crawler.
// Unavailable references are reported with an error wrapping models.ErrUnavailable.
type Provider interface {
	Neighbors(ctx context.Context, ref string) ([]models.Association, error)
	ResolveName(ctx context.Context, ref string) (string, error)
}

func unavailable(op, ref string, cause error) error {
	if cause == nil {
		cause = models.ErrUnavailable
	} else {
		cause = fmt.Errorf("%w: %w", models.ErrUnavailable, cause)
	}

	return &models.ResolutionError{Ref: ref, Op: op, Err: cause}
}
