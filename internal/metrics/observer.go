package metrics

import (
	"github.com/persistorai/degrees/internal/crawl"
	"github.com/persistorai/degrees/internal/models"
)

var _ crawl.Observer = CrawlObserver{}

// CrawlObserver feeds crawl events into the discovery counters. Level and
// progress events are ignored.
type CrawlObserver struct {
	crawl.NopObserver
}

// Node counts a discovered node.
func (CrawlObserver) Node(string, int) { NodesDiscovered.Inc() }

// Edge counts a discovered edge.
func (CrawlObserver) Edge(string, string) { EdgesDiscovered.Inc() }

// Warning counts a failed lookup.
func (CrawlObserver) Warning(models.Warning) { ResolutionWarnings.Inc() }
