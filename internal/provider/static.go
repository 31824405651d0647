package provider

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/persistorai/degrees/internal/models"
)

// Fixture is the YAML document read by StaticProvider:
//
//	entities:
//	  UC1:
//	    name: Alice
//	    neighbors: [UC2, UC3]
type Fixture struct {
	Entities map[string]FixtureEntity `yaml:"entities"`
}

// FixtureEntity is one entity in a fixture.
type FixtureEntity struct {
	Name      string   `yaml:"name"`
	Neighbors []string `yaml:"neighbors"`
}

// StaticProvider serves associations from an in-memory fixture.
// Intended for tests and offline runs.
type StaticProvider struct {
	entities map[string]FixtureEntity
}

// NewStaticProvider creates a StaticProvider from a parsed fixture.
func NewStaticProvider(f Fixture) *StaticProvider {
	return &StaticProvider{entities: f.Entities}
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is operator-supplied.
	if err != nil {
		return Fixture{}, fmt.Errorf("provider/static: reading fixture: %w", err)
	}

	return ParseFixture(data)
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("provider/static: parsing fixture: %w", err)
	}

	if len(f.Entities) == 0 {
		return Fixture{}, fmt.Errorf("provider/static: fixture declares no entities")
	}

	return f, nil
}

// Neighbors returns the fixture's neighbor list for ref. Neighbors that are
// not themselves declared are returned without a name.
func (p *StaticProvider) Neighbors(_ context.Context, ref string) ([]models.Association, error) {
	e, ok := p.entities[ref]
	if !ok {
		return nil, unavailable("neighbors", ref, nil)
	}

	out := make([]models.Association, 0, len(e.Neighbors))
	for _, nb := range e.Neighbors {
		out = append(out, models.Association{Ref: nb, Name: p.entities[nb].Name})
	}

	return out, nil
}

// ResolveName returns the fixture name for ref.
func (p *StaticProvider) ResolveName(_ context.Context, ref string) (string, error) {
	e, ok := p.entities[ref]
	if !ok || e.Name == "" {
		return "", unavailable("name", ref, nil)
	}

	return e.Name, nil
}
