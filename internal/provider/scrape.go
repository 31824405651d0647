package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/persistorai/degrees/internal/models"
)

// ScrapeProvider reads related entities from HTML pages. The reference of an
// entity is the URL of its page. Related entities are list items carrying
// every class in itemClass, each holding an h3 > a whose title is the
// display name and whose href links to the related page.
type ScrapeProvider struct {
	base      *url.URL
	itemClass []string
	fetch     *fetcher
}

// NewScrapeProvider creates a ScrapeProvider. Relative references and hrefs
// resolve against baseURL.
func NewScrapeProvider(baseURL, itemClass string, opts ...Option) (*ScrapeProvider, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("provider/scrape: invalid base url: %w", err)
	}

	classes := strings.Fields(itemClass)
	if len(classes) == 0 {
		return nil, fmt.Errorf("provider/scrape: item class is required")
	}

	return &ScrapeProvider{base: base, itemClass: classes, fetch: newFetcher(opts)}, nil
}

// Neighbors scrapes the related entity list from the page at ref.
// Items missing a title or href are skipped.
func (p *ScrapeProvider) Neighbors(ctx context.Context, ref string) ([]models.Association, error) {
	page, err := p.resolve(ref)
	if err != nil {
		return nil, unavailable("neighbors", ref, err)
	}

	var out []models.Association

	err = p.fetch.get(ctx, page.String(), "text/html", func(body io.Reader) error {
		doc, err := html.Parse(body)
		if err != nil {
			return fmt.Errorf("parse page: %w", err)
		}

		out = p.extract(page, doc)

		return nil
	})
	if err != nil {
		return nil, classify("provider/scrape", "neighbors", ref, err)
	}

	return out, nil
}

// ResolveName returns the page title of ref.
func (p *ScrapeProvider) ResolveName(ctx context.Context, ref string) (string, error) {
	page, err := p.resolve(ref)
	if err != nil {
		return "", unavailable("name", ref, err)
	}

	var title string

	err = p.fetch.get(ctx, page.String(), "text/html", func(body io.Reader) error {
		doc, err := html.Parse(body)
		if err != nil {
			return fmt.Errorf("parse page: %w", err)
		}

		title = pageTitle(doc)

		return nil
	})
	if err != nil {
		return "", classify("provider/scrape", "name", ref, err)
	}

	if title == "" {
		return "", unavailable("name", ref, errors.New("provider/scrape: page has no title"))
	}

	return title, nil
}

func (p *ScrapeProvider) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("provider/scrape: invalid reference: %w", err)
	}

	u = p.base.ResolveReference(u)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("provider/scrape: reference %q is not an http url", ref)
	}

	return u, nil
}

func (p *ScrapeProvider) extract(page *url.URL, doc *html.Node) []models.Association {
	var out []models.Association

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Li && hasClasses(n, p.itemClass) {
			if a, ok := relatedLink(page, n); ok {
				out = append(out, a)
			}

			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return out
}

// relatedLink reads the first h3 > a of item.
func relatedLink(page *url.URL, item *html.Node) (models.Association, bool) {
	h3 := findElement(item, atom.H3)
	if h3 == nil {
		return models.Association{}, false
	}

	a := findElement(h3, atom.A)
	if a == nil {
		return models.Association{}, false
	}

	title := strings.TrimSpace(attr(a, "title"))
	href := strings.TrimSpace(attr(a, "href"))

	if title == "" || href == "" {
		return models.Association{}, false
	}

	u, err := url.Parse(href)
	if err != nil {
		return models.Association{}, false
	}

	return models.Association{Name: title, Ref: page.ResolveReference(u).String()}, true
}

func pageTitle(doc *html.Node) string {
	t := findElement(doc, atom.Title)
	if t == nil {
		return ""
	}

	var sb strings.Builder
	for c := t.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

func findElement(n *html.Node, want atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == want {
			return c
		}

		if found := findElement(c, want); found != nil {
			return found
		}
	}

	return nil
}

func hasClasses(n *html.Node, want []string) bool {
	have := strings.Fields(attr(n, "class"))

	for _, w := range want {
		found := false

		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}
