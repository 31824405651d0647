// Package output renders a crawled graph in one of the supported artifact
// formats.
package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/persistorai/degrees/internal/graph"
	"github.com/persistorai/degrees/internal/graphml"
	"github.com/persistorai/degrees/internal/models"
)

// Format selects an output encoding.
type Format string

// Supported formats.
const (
	FormatGraphML Format = "graphml"
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatGraphML, FormatText, FormatJSON, FormatYAML}

// ParseFormat validates a format selector. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}

	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}

	return "", &models.ConfigError{Field: "format", Reason: fmt.Sprintf("unknown output format %q (want one of %s)", s, strings.Join(names, ", "))}
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatGraphML:
		return "application/graphml+xml"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the conventional file extension for f.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ".graphml"
	}
}

// Write encodes g to w in format f.
func Write(w io.Writer, g *graph.Graph, f Format) error {
	switch f {
	case FormatGraphML:
		return graphml.EncodeTo(w, g)
	case FormatText:
		return writeAdjacency(w, g)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(NodeLink(g)); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(NodeLink(g)); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}

		return nil
	default:
		return &models.ConfigError{Field: "format", Reason: fmt.Sprintf("unknown output format %q", f)}
	}
}

// NodeLink converts g into its node-link document.
func NodeLink(g *graph.Graph) models.NodeLinkDocument {
	doc := models.NodeLinkDocument{
		Directed: g.Directed,
		Graph: models.NodeLinkGraph{
			ID:    g.ID,
			Stats: models.NodeLinkStats{NodeCount: g.NodeCount(), EdgeCount: g.EdgeCount()},
		},
		Nodes: make([]models.NodeLinkNode, 0, g.NodeCount()),
		Links: make([]models.NodeLinkEdge, 0, g.EdgeCount()),
	}

	for _, n := range g.Nodes() {
		attrs := n.Attrs.Map()
		node := models.NodeLinkNode{ID: n.ID}

		if d := n.Degree(); d >= 0 {
			node.Degree = &d
			delete(attrs, graph.DegreeKey)
		}

		if len(attrs) > 0 {
			node.Attributes = attrs
		}

		doc.Nodes = append(doc.Nodes, node)
	}

	for _, e := range g.Edges() {
		doc.Links = append(doc.Links, models.NodeLinkEdge{Source: e.Source, Target: e.Target, Attributes: e.Attrs.Map()})
	}

	return doc
}

// writeAdjacency writes one line per node: the node followed by each
// neighbor not already listed on an earlier line, tab separated.
func writeAdjacency(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	done := make(map[string]struct{}, g.NodeCount())

	for _, n := range g.Nodes() {
		bw.WriteString(n.ID)

		for _, nb := range g.Neighbors(n.ID) {
			if _, ok := done[nb]; ok {
				continue
			}

			bw.WriteByte('\t')
			bw.WriteString(nb)
		}

		bw.WriteByte('\n')
		done[n.ID] = struct{}{}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing adjacency list: %w", err)
	}

	return nil
}
