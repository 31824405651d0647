package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for provider lookups.
var (
	ErrUnavailable = errors.New("entity unavailable")
	ErrMissingRef  = errors.New("reference is required")
)

// Sentinel errors for graph construction.
var (
	ErrInvalidEdge = errors.New("invalid edge")
	ErrMissingID   = errors.New("id is required")
)

// Sentinel errors for wire format decoding.
var (
	ErrMissingNodeID      = errors.New("node is missing id")
	ErrMissingEndpoint    = errors.New("edge is missing source or target")
	ErrDanglingEdge       = errors.New("edge references undeclared node")
	ErrEntityDeclaration  = errors.New("doctype and entity declarations are not accepted")
	ErrMalformedToken     = errors.New("malformed token")
	ErrUnsupportedElement = errors.New("unsupported element")
	ErrDuplicate          = errors.New("duplicate declaration")
	ErrDocumentTooLarge   = errors.New("document too large")
)

// ErrInvalidConfig indicates rejected bounds or selectors, raised before any crawl work starts.
var ErrInvalidConfig = errors.New("invalid configuration")

// ResolutionError reports that a provider could not resolve an entity reference.
type ResolutionError struct {
	Ref string
	Op  string
	Err error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s %q: %v", e.Op, e.Ref, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error { return e.Err }

// FormatError reports wire format input that violates the accepted grammar.
type FormatError struct {
	Offset int
	Token  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := fmt.Sprintf("graphml: offset %d: %s", e.Offset, e.Reason)
	if e.Token != "" {
		msg += fmt.Sprintf("\nEntity: %s", truncate(e.Token, 200))
	}

	return msg
}

// Unwrap returns the sentinel classifying the failure.
func (e *FormatError) Unwrap() error { return e.Err }

// InvalidEdgeError reports an edge whose endpoint does not exist in the graph.
type InvalidEdgeError struct {
	Source  string
	Target  string
	Missing string
}

// Error implements the error interface.
func (e *InvalidEdgeError) Error() string {
	return fmt.Sprintf("edge %q -> %q: endpoint %q is not a node", e.Source, e.Target, e.Missing)
}

// Unwrap returns ErrInvalidEdge.
func (e *InvalidEdgeError) Unwrap() error { return ErrInvalidEdge }

// ConfigError reports an invalid option value.
type ConfigError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// ErrFieldTooLong returns an error indicating a field exceeds its maximum length.
func ErrFieldTooLong(field string, maxLen int) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf("exceeds maximum length of %d", maxLen)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
