package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/persistorai/degrees/internal/models"
)

// HTTPProvider reads associations from a JSON API:
//
//	GET {base}/entities/{ref}           -> {"name": "..."}
//	GET {base}/entities/{ref}/neighbors -> {"neighbors": [{"name": "...", "ref": "..."}]}
type HTTPProvider struct {
	baseURL string
	fetch   *fetcher
}

// NewHTTPProvider creates an HTTPProvider rooted at baseURL.
func NewHTTPProvider(baseURL string, opts ...Option) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetch:   newFetcher(opts),
	}
}

type nameResponse struct {
	Name string `json:"name"`
}

type neighborsResponse struct {
	Neighbors []models.Association `json:"neighbors"`
}

// Neighbors fetches the neighbor list for ref. Entries without a reference
// are dropped.
func (p *HTTPProvider) Neighbors(ctx context.Context, ref string) ([]models.Association, error) {
	var resp neighborsResponse
	if err := p.getJSON(ctx, "/entities/"+url.PathEscape(ref)+"/neighbors", &resp); err != nil {
		return nil, classify("provider/http", "neighbors", ref, err)
	}

	out := make([]models.Association, 0, len(resp.Neighbors))
	for _, a := range resp.Neighbors {
		if a.Ref == "" {
			continue
		}

		out = append(out, a)
	}

	return out, nil
}

// ResolveName fetches the display name for ref.
func (p *HTTPProvider) ResolveName(ctx context.Context, ref string) (string, error) {
	var resp nameResponse
	if err := p.getJSON(ctx, "/entities/"+url.PathEscape(ref), &resp); err != nil {
		return "", classify("provider/http", "name", ref, err)
	}

	if resp.Name == "" {
		return "", unavailable("name", ref, errors.New("provider/http: empty name"))
	}

	return resp.Name, nil
}

func (p *HTTPProvider) getJSON(ctx context.Context, path string, out any) error {
	return p.fetch.get(ctx, p.baseURL+path, "application/json", func(body io.Reader) error {
		if err := json.NewDecoder(body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		return nil
	})
}
