package graphml

import (
	"errors"
	"fmt"
	"io"

	"github.com/persistorai/degrees/internal/graph"
	"github.com/persistorai/degrees/internal/models"
)

// MaxDocumentSize bounds the input accepted by Decode.
const MaxDocumentSize = 64 << 20

type edgeDecl struct {
	tok    token
	source string
	target string
}

// Decode parses a document produced by Encode. Any violation of the accepted
// grammar yields a *models.FormatError and no graph.
func Decode(src []byte) (*graph.Graph, error) {
	if len(src) > MaxDocumentSize {
		return nil, &models.FormatError{
			Reason: fmt.Sprintf("document is %d bytes, limit is %d", len(src), MaxDocumentSize),
			Err:    models.ErrDocumentTooLarge,
		}
	}

	var (
		lex      = newLexer(src)
		root     bool
		graphTok *token
		nodes    []token
		nodeIDs  = make(map[string]struct{})
		edges    []edgeDecl
	)

	for {
		tok, err := lex.next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if tok.kind == tokenClose {
			continue
		}

		switch tok.name {
		case "graphml":
			if root || graphTok != nil {
				return nil, tokenError(tok, models.ErrUnsupportedElement, "unexpected graphml element")
			}

			root = true
		case "graph":
			if graphTok != nil {
				return nil, tokenError(tok, models.ErrDuplicate, "document declares more than one graph")
			}

			t := tok
			graphTok = &t
		case "node":
			if graphTok == nil {
				return nil, tokenError(tok, models.ErrMalformedToken, "node outside of a graph element")
			}

			id, ok := tok.attr("id")
			if !ok {
				return nil, tokenError(tok, models.ErrMissingNodeID, "node is missing id")
			}

			if _, dup := nodeIDs[id]; dup {
				return nil, tokenError(tok, models.ErrDuplicate, fmt.Sprintf("node %q declared more than once", id))
			}

			nodeIDs[id] = struct{}{}
			nodes = append(nodes, tok)
		case "edge":
			if graphTok == nil {
				return nil, tokenError(tok, models.ErrMalformedToken, "edge outside of a graph element")
			}

			source, ok := tok.attr("source")
			if !ok {
				return nil, tokenError(tok, models.ErrMissingEndpoint, "edge is missing source")
			}

			target, ok := tok.attr("target")
			if !ok {
				return nil, tokenError(tok, models.ErrMissingEndpoint, "edge is missing target")
			}

			edges = append(edges, edgeDecl{tok: tok, source: source, target: target})
		default:
			return nil, tokenError(tok, models.ErrUnsupportedElement, fmt.Sprintf("unsupported element <%s>", tok.name))
		}
	}

	if graphTok == nil {
		return nil, &models.FormatError{Reason: "document has no graph element", Err: models.ErrMalformedToken}
	}

	id, directed, err := graphHeader(*graphTok)
	if err != nil {
		return nil, err
	}

	type pair struct{ a, b string }
	seen := make(map[pair]struct{}, len(edges))

	for _, e := range edges {
		for _, end := range []string{e.source, e.target} {
			if _, ok := nodeIDs[end]; !ok {
				return nil, tokenError(e.tok, models.ErrDanglingEdge, fmt.Sprintf("edge references undeclared node %q", end))
			}
		}

		_, fwd := seen[pair{e.source, e.target}]
		_, rev := seen[pair{e.target, e.source}]

		if fwd || rev {
			return nil, tokenError(e.tok, models.ErrDuplicate, fmt.Sprintf("edge %q -> %q declared more than once", e.source, e.target))
		}

		seen[pair{e.source, e.target}] = struct{}{}
	}

	g := graph.New(id, directed)

	for _, n := range nodes {
		nodeID, _ := n.attr("id")
		g.AddNode(nodeID, extraAttrs(n, "id"))
	}

	for _, e := range edges {
		if _, err := g.AddEdge(e.source, e.target, extraAttrs(e.tok, "source", "target")); err != nil {
			return nil, fmt.Errorf("rebuilding edge %q -> %q: %w", e.source, e.target, err)
		}
	}

	return g, nil
}

func graphHeader(tok token) (string, bool, error) {
	id, ok := tok.attr("id")
	if !ok {
		id = DefaultGraphID
	}

	direction, ok := tok.attr("edgedefault")
	if !ok {
		return id, false, nil
	}

	switch direction {
	case EdgeUndirected:
		return id, false, nil
	case EdgeDirected:
		return id, true, nil
	default:
		return "", false, tokenError(tok, models.ErrMalformedToken, fmt.Sprintf("edgedefault %q is neither directed nor undirected", direction))
	}
}

func extraAttrs(tok token, skip ...string) graph.Attributes {
	var attrs graph.Attributes

outer:
	for _, a := range tok.attrs {
		for _, s := range skip {
			if a.Key == s {
				continue outer
			}
		}

		attrs.Set(a.Key, a.Value)
	}

	return attrs
}

func tokenError(tok token, sentinel error, reason string) error {
	return &models.FormatError{Offset: tok.offset, Token: tok.raw, Reason: reason, Err: sentinel}
}
