package api

import (
	"context"

	"github.com/persistorai/degrees/internal/crawl"
	"github.com/persistorai/degrees/internal/service"
)

// CrawlRunner runs crawls. *service.CrawlService implements it.
type CrawlRunner interface {
	Validate(req *service.CrawlRequest) error
	Crawl(ctx context.Context, req service.CrawlRequest, observers ...crawl.Observer) (*service.Run, error)
}

var _ CrawlRunner = (*service.CrawlService)(nil)
