// Package models defines data types shared by the crawler, codec, and API layers.
package models

import "strings"

// Association is one neighbor returned by a provider: a display name and the
// opaque reference used to expand it further. Name may be empty when the
// provider only knows the reference; the crawler resolves it separately.
type Association struct {
	Name string `json:"name" yaml:"name"`
	Ref  string `json:"ref" yaml:"ref"`
}

// Seed is the entity a crawl starts from.
type Seed struct {
	Name string `json:"name,omitempty"`
	Ref  string `json:"reference"`
}

// Validate checks the seed carries a usable reference.
func (s *Seed) Validate() error {
	s.Ref = strings.TrimSpace(s.Ref)
	s.Name = strings.TrimSpace(s.Name)

	if s.Ref == "" {
		return &ConfigError{Field: "reference", Reason: ErrMissingRef.Error()}
	}

	if len(s.Ref) > 2048 {
		return ErrFieldTooLong("reference", 2048)
	}

	if len(s.Name) > 1024 {
		return ErrFieldTooLong("name", 1024)
	}

	return nil
}
