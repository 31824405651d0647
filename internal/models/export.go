package models

// NodeLinkDocument is the node-link representation used by the json and yaml
// output formats. It mirrors what graph tooling expects from a node-link dump:
// graph metadata, a node list, and a link list.
type NodeLinkDocument struct {
	Directed bool           `json:"directed" yaml:"directed"`
	Graph    NodeLinkGraph  `json:"graph" yaml:"graph"`
	Nodes    []NodeLinkNode `json:"nodes" yaml:"nodes"`
	Links    []NodeLinkEdge `json:"links" yaml:"links"`
}

// NodeLinkGraph carries graph-level metadata.
type NodeLinkGraph struct {
	ID    string        `json:"id" yaml:"id"`
	Stats NodeLinkStats `json:"stats" yaml:"stats"`
}

// NodeLinkStats summarises the contents of a document.
type NodeLinkStats struct {
	NodeCount int `json:"node_count" yaml:"node_count"`
	EdgeCount int `json:"edge_count" yaml:"edge_count"`
}

// NodeLinkNode is the portable representation of a node.
type NodeLinkNode struct {
	ID         string            `json:"id" yaml:"id"`
	Degree     *int              `json:"degree,omitempty" yaml:"degree,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// NodeLinkEdge is the portable representation of an edge.
type NodeLinkEdge struct {
	Source     string            `json:"source" yaml:"source"`
	Target     string            `json:"target" yaml:"target"`
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// CrawlSummary summarises the outcome of a crawl run.
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

// Warning is a non-fatal problem recorded during a crawl.
type Warning struct {
	Degree  int    `json:"degree"`
	Ref     string `json:"ref"`
	Message string `json:"message"`
}
