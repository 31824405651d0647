package palette_test

import (
	"errors"
	"math/rand/v2"
	"regexp"
	"testing"

	"github.com/persistorai/degrees/internal/graph"
	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/palette"
)

var hexColour = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestColors_CountAndUniqueness(t *testing.T) {
	for _, levels := range []int{0, 1, 5, 6, 7, 25, 100} {
		colors, err := palette.Colors(levels, seeded(1))
		if err != nil {
			t.Fatalf("Colors(%d): %v", levels, err)
		}

		if len(colors) != levels+1 {
			t.Fatalf("Colors(%d) returned %d colours, want %d", levels, len(colors), levels+1)
		}

		seen := make(map[string]bool)
		for _, c := range colors {
			if !hexColour.MatchString(c) {
				t.Errorf("colour %q is not #rrggbb", c)
			}

			if c == "#000000" || c == "#ffffff" {
				t.Errorf("colour %q should be excluded", c)
			}

			if seen[c] {
				t.Errorf("colour %q drawn twice", c)
			}

			seen[c] = true
		}
	}
}

func TestColors_SmallestGridUsed(t *testing.T) {
	// Six levels need seven colours; the 2-grid has only six candidates so
	// values come from the 3-grid {00, 7f, ff}.
	colors, err := palette.Colors(6, seeded(7))
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}

	allowed := regexp.MustCompile(`^#(00|7f|ff){3}$`)
	for _, c := range colors {
		if !allowed.MatchString(c) {
			t.Errorf("colour %q is not on the 3-point grid", c)
		}
	}

	two, err := palette.Colors(5, seeded(7))
	if err != nil {
		t.Fatalf("Colors: %v", err)
	}

	corners := regexp.MustCompile(`^#(00|ff){3}$`)
	for _, c := range two {
		if !corners.MatchString(c) {
			t.Errorf("colour %q is not on the 2-point grid", c)
		}
	}
}

func TestColors_Deterministic(t *testing.T) {
	a, _ := palette.Colors(10, seeded(42))
	b, _ := palette.Colors(10, seeded(42))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different colours at %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestColors_InvalidInput(t *testing.T) {
	if _, err := palette.Colors(-1, seeded(1)); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for negative levels, got %v", err)
	}

	if _, err := palette.Colors(1, nil); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for nil rng, got %v", err)
	}
}

func TestLegend(t *testing.T) {
	g := graph.New("g", false)
	g.AddNode("A", graph.NewAttributes(graph.DegreeKey, "0"))
	g.AddNode("B", graph.NewAttributes(graph.DegreeKey, "1"))
	g.AddNode("C", graph.NewAttributes(graph.DegreeKey, "3"))
	g.AddNode("D", graph.Attributes{})

	legend := palette.Legend(g, []string{"#ff0000", "#00ff00"})

	if legend["A"] != "#ff0000" || legend["B"] != "#00ff00" {
		t.Errorf("legend = %v", legend)
	}

	if _, ok := legend["C"]; ok {
		t.Error("C has no colour and should be omitted")
	}

	if _, ok := legend["D"]; ok {
		t.Error("D has no degree and should be omitted")
	}
}
