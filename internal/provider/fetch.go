package provider

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"

	"github.com/persistorai/degrees/internal/config"
	"github.com/persistorai/degrees/internal/models"
)

// maxResponseBytes limits response body reads.
const maxResponseBytes = 4 << 20

var (
	errNotFound     = errors.New("not found")
	errUnauthorized = errors.New("credentials rejected")
)

// fetcher performs rate limited GET requests with retry on transient
// failures. It is shared by the HTTP and scrape adapters.
type fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retries uint64
	backoff time.Duration
	apiKey  config.Secret
	agent   string
}

// Option configures the HTTP-backed adapters.
type Option func(*fetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(f *fetcher) { f.client = c }
}

// WithRateLimit caps the request rate. A non-positive rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(f *fetcher) {
		if rps <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}

		f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetries sets how many times a transient failure is retried and the
// initial exponential backoff.
func WithRetries(n int, backoff time.Duration) Option {
	return func(f *fetcher) {
		if n < 0 {
			n = 0
		}

		if backoff <= 0 {
			backoff = time.Millisecond
		}

		f.retries = uint64(n)
		f.backoff = backoff
	}
}

// WithAPIKey sends key as a bearer token.
func WithAPIKey(key config.Secret) Option {
	return func(f *fetcher) { f.apiKey = key }
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(f *fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

func newFetcher(opts []Option) *fetcher {
	f := &fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 1),
		retries: 3,
		backoff: 200 * time.Millisecond,
		agent:   "degrees/" + config.Version,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// get fetches rawURL and hands the body to read. read is called at most
// once per attempt that returned 200.
func (f *fetcher) get(ctx context.Context, rawURL, accept string, read func(io.Reader) error) error {
	b := retry.WithMaxRetries(f.retries, retry.NewExponential(f.backoff))

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}

		return f.do(ctx, rawURL, accept, read)
	})
}

func (f *fetcher) do(ctx context.Context, rawURL, accept string, read func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", f.agent)

	if f.apiKey.Value() != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey.Value())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return retry.RetryableError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, maxResponseBytes)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		_, _ = io.Copy(io.Discard, body)
		return errNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		_, _ = io.Copy(io.Discard, body)
		return errUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, body)
		return retry.RetryableError(fmt.Errorf("unexpected status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		msg, _ := io.ReadAll(body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return read(body)
}

// classify maps request failures onto the provider error contract. Context
// cancellation and rejected credentials are not unavailability and stop the
// crawl.
func classify(prefix, op, ref string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	err = fmt.Errorf("%s: %w", prefix, err)

	if errors.Is(err, errUnauthorized) {
		return &models.ResolutionError{Ref: ref, Op: op, Err: err}
	}

	return unavailable(op, ref, err)
}
