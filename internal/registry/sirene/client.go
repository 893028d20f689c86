// Package sirene is the HTTP binding to the INSEE Sirene 3.11 API.
//
// The client owns transport concerns only: URLs, the API key header, status
// codes, per-attempt timeouts and the retry budget. It returns decoded raw
// records and *registry.StatusError for non-success answers.
package sirene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"sirene/internal/registry"
	"sirene/internal/registry/models"
)

// DefaultBaseURL is the public Sirene API root.
const DefaultBaseURL = "https://api.insee.fr/api-sirene/3.11"

const (
	apiKeyHeader = "X-INSEE-Api-Key-Integration"
	maxBodyBytes = 64 << 20
)

// Client implements registry.Client over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	timeout    time.Duration
	newBackOff func() backoff.BackOff
	logger     *slog.Logger
}

var _ registry.Client = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the integration key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a retryable failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithBackOff sets the retry delay policy. The factory is called once per request.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = f }
}

// WithLogger sets a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Sirene client rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse sirene base URL: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		maxRetries: 3,
		timeout:    30 * time.Second,
		newBackOff: defaultBackOff,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 0 {
		return nil, fmt.Errorf("max retries must be >= 0, got %d", c.maxRetries)
	}
	if c.timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0, got %s", c.timeout)
	}
	return c, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// LegalUnit implements registry.Client.
func (c *Client) LegalUnit(ctx context.Context, siren string) (*models.LegalUnitResponse, error) {
	var out models.LegalUnitResponse
	u := c.baseURL + "/siren/" + url.PathEscape(siren)
	if err := c.get(ctx, registry.EndpointLegalUnit, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchEstablishments implements registry.Client. A 404 answer means the
// query matched nothing and is returned as an empty page.
func (c *Client) SearchEstablishments(ctx context.Context, q models.SearchQuery) (*models.EstablishmentPage, error) {
	params := url.Values{}
	params.Set("q", q.Q)
	params.Set("nombre", strconv.Itoa(q.Nombre))
	params.Set("debut", strconv.Itoa(q.Debut))
	if q.MasquerValeursNulles {
		params.Set("masquerValeursNulles", "true")
	}

	var out models.EstablishmentPage
	err := c.get(ctx, registry.EndpointEstablishments, c.baseURL+"/siret?"+params.Encode(), &out)
	if err != nil {
		var se *registry.StatusError
		if errors.As(err, &se) && se.NotFound() {
			return &models.EstablishmentPage{
				Header:         models.Header{Statut: http.StatusNotFound, Debut: q.Debut},
				Etablissements: []models.Establishment{},
			}, nil
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, endpoint, rawURL string, out any) error {
	attempt := 0
	op := func() error {
		attempt++
		return c.attempt(ctx, endpoint, rawURL, out)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "registry call failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}
	return backoff.RetryNotify(op, policy, notify)
}

func (c *Client) attempt(ctx context.Context, endpoint, rawURL string, out any) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build %s request: %w", endpoint, err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		return fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		se := &registry.StatusError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(body)),
		}
		if se.Retryable() {
			return se
		}
		return backoff.Permanent(se)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode %s response: %w", endpoint, err))
	}
	return nil
}
