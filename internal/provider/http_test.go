package provider_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/models"
	"github.com/persistorai/degrees/internal/provider"
)

func fastOpts(extra ...provider.Option) []provider.Option {
	return append([]provider.Option{
		provider.WithRateLimit(0),
		provider.WithRetries(2, time.Millisecond),
	}, extra...)
}

func TestHTTPProvider(t *testing.T) {
	var auth atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/entities/UC1":
			fmt.Fprint(w, `{"name":"Alice"}`)
		case "/entities/UC1/neighbors":
			fmt.Fprint(w, `{"neighbors":[{"name":"Bob","ref":"UC2"},{"name":"Nobody","ref":""}]}`)
		case "/entities/blank":
			fmt.Fprint(w, `{"name":""}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := provider.NewHTTPProvider(srv.URL+"/", fastOpts(provider.WithAPIKey(config.Secret("k3y")))...)
	ctx := context.Background()

	name, err := p.ResolveName(ctx, "UC1")
	if err != nil || name != "Alice" {
		t.Fatalf("ResolveName = %q, %v", name, err)
	}

	if got := auth.Load(); got != "Bearer k3y" {
		t.Errorf("Authorization = %v", got)
	}

	nbs, err := p.Neighbors(ctx, "UC1")
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}

	if len(nbs) != 1 || nbs[0] != (models.Association{Name: "Bob", Ref: "UC2"}) {
		t.Errorf("neighbors = %+v", nbs)
	}

	if _, err := p.Neighbors(ctx, "UC404"); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("404: expected ErrUnavailable, got %v", err)
	}

	if _, err := p.ResolveName(ctx, "blank"); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("empty name: expected ErrUnavailable, got %v", err)
	}
}

func TestHTTPProvider_RetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		fmt.Fprint(w, `{"name":"Alice"}`)
	}))
	defer srv.Close()

	p := provider.NewHTTPProvider(srv.URL, fastOpts()...)

	name, err := p.ResolveName(context.Background(), "UC1")
	if err != nil || name != "Alice" {
		t.Fatalf("ResolveName = %q, %v", name, err)
	}

	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestHTTPProvider_ExhaustedRetriesAreUnavailable(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := provider.NewHTTPProvider(srv.URL, fastOpts()...)

	if _, err := p.Neighbors(context.Background(), "UC1"); !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}

	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestHTTPProvider_RejectedCredentialsAreFatal(t *testing.T) {
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := provider.NewHTTPProvider(srv.URL, fastOpts()...)

	_, err := p.ResolveName(context.Background(), "UC1")

	var re *models.ResolutionError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}

	if errors.Is(err, models.ErrUnavailable) {
		t.Error("401 must not read as unavailable")
	}

	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestHTTPProvider_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"name":"Alice"}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := provider.NewHTTPProvider(srv.URL, fastOpts()...)

	_, err := p.ResolveName(ctx, "UC1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	if errors.Is(err, models.ErrUnavailable) {
		t.Error("cancellation must not read as unavailable")
	}
}
