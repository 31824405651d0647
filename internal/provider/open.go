package provider

import (
	"context"
	"fmt"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/dbpool"
	"github.com/persistorai/degrees/internal/metrics"
)

// Open builds the provider selected by cfg, instrumented and, when
// cfg.CacheSize is positive, cached. The returned release func frees any
// held resources and is never nil.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (Provider, func(), error) {
	release := func() {}

	base := []Option{
		WithRateLimit(cfg.RateLimit),
		WithRetries(cfg.Retries, cfg.RetryBackoff),
		WithTimeout(cfg.RequestTimeout),
		WithAPIKey(cfg.APIKey),
	}
	opts = append(base, opts...)

	var p Provider

	switch cfg.Provider {
	case config.ProviderStatic:
		f, err := LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, release, err
		}

		p = NewStaticProvider(f)
	case config.ProviderHTTP:
		p = NewHTTPProvider(cfg.ProviderURL, opts...)
	case config.ProviderScrape:
		sp, err := NewScrapeProvider(cfg.ProviderURL, cfg.ScrapeItemClass, opts...)
		if err != nil {
			return nil, release, err
		}

		p = sp
	case config.ProviderPostgres:
		pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
		if err != nil {
			return nil, release, fmt.Errorf("provider/postgres: %w", err)
		}

		if err := pool.Verify(ctx); err != nil {
			pool.Close()
			return nil, release, fmt.Errorf("provider/postgres: %w", err)
		}

		release = pool.Close
		p = NewPostgresProvider(pool, cfg.TenantID)
	default:
		return nil, release, fmt.Errorf("provider: unknown kind %q", cfg.Provider)
	}

	p = Instrument(p, string(cfg.Provider))

	if cfg.CacheSize > 0 {
		c, err := NewCached(p, cfg.CacheSize)
		if err != nil {
			release()
			return nil, func() {}, err
		}

		kind := string(cfg.Provider)
		c.OnHit(func(op string) {
			metrics.ProviderRequests.WithLabelValues(kind, op, metrics.OutcomeCacheHit).Inc()
		})

		p = c
	}

	return p, release, nil
}
