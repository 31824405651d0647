// Package graphml encodes graphs to a fixed GraphML dialect and decodes that
// dialect back with a restricted lexer. Only the subset produced by Encode is
// accepted; DOCTYPE and entity declarations are always rejected.
package graphml

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/persistorai/degrees/internal/graph"
)

// Document constants.
const (
	Namespace      = "http://graphml.graphdrawing.org/xmlns"
	XSINamespace   = "http://www.w3.org/2001/XMLSchema-instance"
	SchemaLocation = "http://graphml.graphdrawing.org/xmlns http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd"

	EdgeDirected   = "directed"
	EdgeUndirected = "undirected"

	// DefaultGraphID is used when a decoded graph element carries no id.
	DefaultGraphID = "graphml"
)

const (
	prolog = `<?xml version="1.0" ?>`
	header = `<graphml xmlns="` + Namespace + `" xmlns:xsi="` + XSINamespace + `" xsi:schemaLocation="` + SchemaLocation + `">`
	footer = `</graphml>`
)

var valueEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	"\t", "&#9;",
	"\n", "&#10;",
	"\r", "&#13;",
)

// Encode renders g as a GraphML document.
func Encode(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, g); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// EncodeTo writes g to w as a GraphML document: tab indented, one element
// per line, nodes and edges in insertion order. Nothing is written when an
// attribute name cannot be encoded.
func EncodeTo(w io.Writer, g *graph.Graph) error {
	nodes, edges := g.Nodes(), g.Edges()
	if err := checkNames(nodes, edges); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	direction := EdgeUndirected
	if g.Directed {
		direction = EdgeDirected
	}

	bw.WriteString(prolog + "\n")
	bw.WriteString(header + "\n")
	fmt.Fprintf(bw, "\t<graph id=\"%s\" edgedefault=\"%s\">\n", valueEscaper.Replace(g.ID), direction)

	for _, n := range nodes {
		bw.WriteString("\t\t<node")
		writeAttr(bw, "id", n.ID)
		writeExtra(bw, n.Attrs)
		bw.WriteString("/>\n")
	}

	for _, e := range edges {
		bw.WriteString("\t\t<edge")
		writeAttr(bw, "source", e.Source)
		writeAttr(bw, "target", e.Target)
		writeExtra(bw, e.Attrs)
		bw.WriteString("/>\n")
	}

	bw.WriteString("\t</graph>\n")
	bw.WriteString(footer + "\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing graphml: %w", err)
	}

	return nil
}

func writeAttr(bw *bufio.Writer, key, value string) {
	bw.WriteByte(' ')
	bw.WriteString(key)
	bw.WriteString(`="`)
	bw.WriteString(valueEscaper.Replace(value))
	bw.WriteByte('"')
}

func writeExtra(bw *bufio.Writer, attrs graph.Attributes) {
	for _, a := range attrs.All() {
		writeAttr(bw, a.Key, a.Value)
	}
}

// checkNames reports the first node or edge attribute that is not a valid
// xml name or collides with an identifying attribute.
func checkNames(nodes []graph.Node, edges []graph.Edge) error {
	for _, n := range nodes {
		if err := checkAttrs(n.Attrs, "id"); err != nil {
			return fmt.Errorf("encoding node %q: %w", n.ID, err)
		}
	}

	for _, e := range edges {
		if err := checkAttrs(e.Attrs, "source", "target"); err != nil {
			return fmt.Errorf("encoding edge %q -> %q: %w", e.Source, e.Target, err)
		}
	}

	return nil
}

func checkAttrs(attrs graph.Attributes, reserved ...string) error {
	for _, a := range attrs.All() {
		if !isName(a.Key) {
			return fmt.Errorf("attribute name %q is not a valid xml name", a.Key)
		}

		for _, r := range reserved {
			if a.Key == r {
				return fmt.Errorf("attribute name %q is reserved", a.Key)
			}
		}
	}

	return nil
}
