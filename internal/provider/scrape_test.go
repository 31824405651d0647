package provider_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/provider"
)

const alicePage = `<!DOCTYPE html>
<html><head><title>
  Alice   Liddell
</title></head>
<body>
<ul>
  <li class="card related-entity"><h3><a title="Bob" href="/people/bob">Bob</a></h3></li>
  <li class="related-entity"><div><h3><a title="Carol" href="https://other.example/carol">Carol</a></h3></div></li>
  <li class="unrelated"><h3><a title="Eve" href="/people/eve">Eve</a></h3></li>
  <li class="related-entity"><h3><a href="/people/untitled">No title</a></h3></li>
  <li class="related-entity"><p>no heading</p></li>
</ul>
</body></html>`

func TestScrapeProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/people/alice":
			fmt.Fprint(w, alicePage)
		case "/people/notitle":
			fmt.Fprint(w, "<html><body></body></html>")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p, err := provider.NewScrapeProvider(srv.URL, "related-entity", fastOpts()...)
	if err != nil {
		t.Fatalf("NewScrapeProvider: %v", err)
	}

	ctx := context.Background()

	name, err := p.ResolveName(ctx, "/people/alice")
	if err != nil || name != "Alice Liddell" {
		t.Fatalf("ResolveName = %q, %v", name, err)
	}

	nbs, err := p.Neighbors(ctx, srv.URL+"/people/alice")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}

	want := []models.Association{
		{Name: "Bob", Ref: srv.URL + "/people/bob"},
		{Name: "Carol", Ref: "https://other.example/carol"},
	}

	if len(nbs) != len(want) {
		t.Fatalf("neighbors = %+v", nbs)
	}

	for i := range want {
		if nbs[i] != want[i] {
			t.Errorf("neighbor %d = %+v, want %+v", i, nbs[i], want[i])
		}
	}

	if _, err := p.ResolveName(ctx, "/people/notitle"); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("untitled page: expected ErrUnavailable, got %v", err)
	}

	if _, err := p.Neighbors(ctx, "/people/missing"); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("missing page: expected ErrUnavailable, got %v", err)
	}

	if _, err := p.Neighbors(ctx, "ftp://example.com/x"); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("non-http reference: expected ErrUnavailable, got %v", err)
	}
}

func TestScrapeProvider_MultipleClasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, alicePage)
	}))
	defer srv.Close()

	p, err := provider.NewScrapeProvider(srv.URL, "card related-entity", fastOpts()...)
	if err != nil {
		t.Fatalf("NewScrapeProvider: %v", err)
	}

	nbs, err := p.Neighbors(context.Background(), "/people/alice")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}

	if len(nbs) != 1 || nbs[0].Name != "Bob" {
		t.Errorf("neighbors = %+v", nbs)
	}
}

func TestNewScrapeProvider_Errors(t *testing.T) {
	if _, err := provider.NewScrapeProvider("http://example.com", "  "); err == nil {
		t.Error("expected error for empty item class")
	}

	if _, err := provider.NewScrapeProvider("://bad", "x"); err == nil {
		t.Error("expected error for invalid base url")
	}
}
