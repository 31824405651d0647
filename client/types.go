package client

import (
	"encoding/json"
	"time"
)

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Provider      string  `json:"provider"`
	Streams       int     `json:"streams"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// CrawlRequest starts a crawl from Reference out to Degree hops.
type CrawlRequest struct {
	Reference string `json:"reference"`
	Name      string `json:"name,omitempty"`
	Degree    int    `json:"degree"`
	Format    string `json:"format,omitempty"`
}

// Warning is a non-fatal problem recorded during a crawl.
type Warning struct {
	Degree  int    `json:"degree"`
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

// CrawlSummary describes a finished crawl.
type CrawlSummary struct {
	RunID        string    `json:"run_id"`
	GraphID      string    `json:"graph_id"`
	Seed         string    `json:"seed"`
	MaxDegree    int       `json:"max_degree"`
	Nodes        int       `json:"nodes"`
	Edges        int       `json:"edges"`
	Processed    int       `json:"processed"`
	Warnings     []Warning `json:"warnings,omitempty"`
	DurationSecs float64   `json:"duration_seconds"`
}

// Artifact is an encoded crawl result.
type Artifact struct {
	ContentType string
	Warnings    int
	Body        []byte
}

// ValidateResponse describes an accepted GraphML document.
type ValidateResponse struct {
	GraphID   string `json:"graph_id"`
	Directed  bool   `json:"directed"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	MaxDegree int    `json:"max_degree"`
}

// Event is one message of a crawl stream. Data depends on Type: level,
// node, edge, warning, done (a CrawlSummary) or error.
type Event struct {
	Type string          `json:"type"`
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
	Time time.Time       `json:"time"`
}
