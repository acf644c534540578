// Package serper implements the trusted-domain web search client on top of
// the Serper Google Search API.
package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"screener/internal/screening/domain"
	"screener/internal/screening/providers"
)

const (
	DefaultURL   = "https://google.serper.dev/search"
	DefaultLimit = 5
)

// Client searches the web and keeps only hits from trusted domains.
type Client struct {
	endpoint   string
	apiKey     string
	limit      int
	country    string
	language   string
	allow      *AllowList
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Option func(*Client)

func WithEndpoint(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.endpoint = u
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTrustedDomains replaces the default allow-list.
func WithTrustedDomains(domains []string) Option {
	return func(c *Client) {
		if len(domains) > 0 {
			c.allow = NewAllowList(domains)
		}
	}
}

func WithResultLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithRateLimit bounds outgoing requests per minute.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		c.limiter = providers.NewLimiter(perMinute)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultURL,
		apiKey:     strings.TrimSpace(apiKey),
		limit:      DefaultLimit,
		country:    "us",
		language:   "en",
		allow:      NewAllowList(DefaultTrustedDomains),
		httpClient: providers.DefaultHTTPClient(),
		limiter:    providers.NewLimiter(0),
		logger:     slog.Default(),
		tracer:     otel.Tracer("screener/serper"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// TrustedDomains lists the allow-list in effect.
func (c *Client) TrustedDomains() []string {
	return c.allow.Domains()
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
}

type searchResponse struct {
	Organic []organicResult `json:"organic"`
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search runs queryText and returns at most the configured number of
// trusted, de-duplicated hits in upstream rank order.
func (c *Client) Search(ctx context.Context, queryText string) (*domain.SearchResult, error) {
	if !c.IsConfigured() {
		return nil, providers.NotConfigured(providers.SearchProviderID)
	}

	ctx, span := c.tracer.Start(ctx, "serper.search")
	defer span.End()

	raw, err := c.do(ctx, queryText)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	result := c.filter(queryText, raw.Organic)
	span.SetAttributes(
		attribute.Int("results.raw", len(raw.Organic)),
		attribute.Int("results.trusted", len(result.Hits)),
	)
	c.logger.DebugContext(ctx, "web search completed",
		"raw_results", len(raw.Organic),
		"trusted_results", len(result.Hits),
	)
	return result, nil
}

func (c *Client) do(ctx context.Context, queryText string) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, providers.FromTransport(providers.SearchProviderID, err)
	}

	// Ask for more than the limit since untrusted hits are dropped afterwards.
	body, err := json.Marshal(searchRequest{Q: queryText, Num: c.limit * 2, GL: c.country, HL: c.language})
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, providers.SearchProviderID, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, providers.SearchProviderID, "build request", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	var resp searchResponse
	if err := providers.DoJSON(c.httpClient, req, providers.SearchProviderID, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) filter(queryText string, organic []organicResult) *domain.SearchResult {
	seen := make(map[string]struct{}, len(organic))
	hits := make([]domain.SearchHit, 0, c.limit)
	for _, o := range organic {
		if len(hits) == c.limit {
			break
		}
		link := strings.TrimSpace(o.Link)
		if link == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		host, trusted, ok := c.allow.Match(link)
		if !ok {
			continue
		}
		hits = append(hits, domain.SearchHit{
			Title:      o.Title,
			URL:        link,
			Snippet:    o.Snippet,
			Domain:     host,
			SourceName: SourceName(trusted, host),
		})
	}
	return &domain.SearchResult{Hits: hits, QueryUsed: queryText}
}
