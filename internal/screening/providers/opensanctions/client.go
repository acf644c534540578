// Package opensanctions implements the sanctions registry client against the
// OpenSanctions HTTP API.
package opensanctions

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
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
	DefaultBaseURL = "https://api.opensanctions.org"
	DefaultLimit   = 10
)

// collections are searched in order until one returns matches.
var collections = []string{"default", "sanctions"}

// wikidataID matches Wikidata item ids, which the registry indexes separately.
var wikidataID = regexp.MustCompile(`^Q\d+$`)

// Client queries OpenSanctions. A Client without an API key reports
// not_configured on every lookup without touching the network.
type Client struct {
	baseURL    string
	apiKey     string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
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

// WithRateLimit bounds outgoing requests per minute.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		c.limiter = providers.NewLimiter(perMinute)
	}
}

func WithResultLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
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
		baseURL:    DefaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		limit:      DefaultLimit,
		httpClient: providers.DefaultHTTPClient(),
		limiter:    providers.NewLimiter(0),
		logger:     slog.Default(),
		tracer:     otel.Tracer("screener/opensanctions"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Lookup resolves an entity against the registry. Id-bearing queries try a
// direct entity fetch first and fall back to search when it misses.
func (c *Client) Lookup(ctx context.Context, q domain.EntityQuery) (*domain.SanctionsResult, error) {
	if !c.IsConfigured() {
		return nil, providers.NotConfigured(providers.SanctionsProviderID)
	}

	ctx, span := c.tracer.Start(ctx, "opensanctions.lookup",
		trace.WithAttributes(
			attribute.Bool("query.has_id", q.HasID()),
		),
	)
	defer span.End()

	result, err := c.lookup(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("results.total", result.RawTotal))
	return result, nil
}

func (c *Client) lookup(ctx context.Context, q domain.EntityQuery) (*domain.SanctionsResult, error) {
	if q.HasID() {
		result, err := c.fetchEntity(ctx, q.ID())
		switch {
		case err == nil && result.Found:
			return result, nil
		case err != nil && isFatal(err):
			return nil, err
		case err != nil:
			c.logger.DebugContext(ctx, "direct entity lookup failed, falling back to search",
				"entity_id", q.ID(), "error", err)
		}
	}

	var lastErr error
	succeeded := false
	terms := searchTerms(q)
	for _, collection := range collections {
		for _, term := range terms {
			result, err := c.search(ctx, collection, term, q)
			if err != nil {
				if isFatal(err) || ctx.Err() != nil {
					return nil, err
				}
				c.logger.WarnContext(ctx, "sanctions collection search failed",
					"collection", collection, "error", err)
				lastErr = err
				continue
			}
			succeeded = true
			if result.Found {
				return result, nil
			}
		}
	}

	if !succeeded && lastErr != nil {
		return nil, lastErr
	}
	return &domain.SanctionsResult{Found: false, Records: []domain.SanctionsMatch{}}, nil
}

// isFatal reports errors that no other endpoint or collection can recover
// from: bad credentials, exhausted quota and expired deadlines.
func isFatal(err error) bool {
	switch providers.GetCategory(err) {
	case providers.ErrorAuthentication, providers.ErrorRateLimited, providers.ErrorTimeout, providers.ErrorNotConfigured:
		return true
	default:
		return false
	}
}

func (c *Client) fetchEntity(ctx context.Context, id string) (*domain.SanctionsResult, error) {
	var e entity
	err := c.get(ctx, "/entities/"+url.PathEscape(id), nil, &e)
	if err != nil {
		var pe *providers.ProviderError
		if errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound {
			return &domain.SanctionsResult{Found: false}, nil
		}
		return nil, err
	}
	if e.ID == "" {
		return &domain.SanctionsResult{Found: false}, nil
	}
	return &domain.SanctionsResult{
		Found:    true,
		Records:  []domain.SanctionsMatch{e.toMatch()},
		RawTotal: 1,
	}, nil
}

// searchTerms lists the search queries tried for q, most specific first.
// Ids are searched by field; a name supplied alongside an id is the last
// resort when the id is unknown to the registry.
func searchTerms(q domain.EntityQuery) []string {
	var terms []string
	if q.HasID() {
		if wikidataID.MatchString(q.ID()) {
			terms = append(terms, "wikidataId:"+q.ID())
		}
		terms = append(terms, "id:"+q.ID())
	}
	if q.Name() != "" {
		terms = append(terms, q.Name())
	}
	return terms
}

func (c *Client) search(ctx context.Context, collection, term string, q domain.EntityQuery) (*domain.SanctionsResult, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("q", term)
	if schema := q.Attribute(domain.AttrSchema); schema != "" {
		params.Set("schema", schema)
	}
	if country := q.Attribute(domain.AttrCountry); len(country) == 2 {
		params.Set("countries", strings.ToLower(country))
	}

	var resp searchResponse
	if err := c.get(ctx, "/search/"+collection, params, &resp); err != nil {
		return nil, err
	}

	total := resp.Total.Value
	records := make([]domain.SanctionsMatch, 0, len(resp.Results))
	for _, e := range resp.Results {
		records = append(records, e.toMatch())
	}
	if total == 0 {
		total = len(records)
	}
	return &domain.SanctionsResult{
		Found:    total > 0 && len(records) > 0,
		Records:  records,
		RawTotal: total,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return providers.FromTransport(providers.SanctionsProviderID, err)
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return providers.NewProviderError(providers.ErrorInternal, providers.SanctionsProviderID, "build request", err)
	}
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return providers.DoJSON(c.httpClient, req, providers.SanctionsProviderID, out)
}

// total accepts both `{"value": n}` and a bare number.
type total struct {
	Value int
}

func (t *total) UnmarshalJSON(data []byte) error {
	var obj struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		t.Value = obj.Value
		return nil
	}
	return json.Unmarshal(data, &t.Value)
}

type searchResponse struct {
	Total   total    `json:"total"`
	Results []entity `json:"results"`
}

type entity struct {
	ID         string           `json:"id"`
	Caption    string           `json:"caption"`
	Schema     string           `json:"schema"`
	Datasets   []string         `json:"datasets"`
	Score      float64          `json:"score"`
	Properties map[string][]any `json:"properties"`
}

func (e entity) toMatch() domain.SanctionsMatch {
	return domain.SanctionsMatch{
		ID:        e.ID,
		Caption:   e.Caption,
		Schema:    e.Schema,
		Datasets:  e.Datasets,
		Countries: e.stringProperty("country"),
		Topics:    e.stringProperty("topics"),
		Score:     e.Score,
	}
}

// stringProperty keeps the string values of a property; nested entities are
// skipped.
func (e entity) stringProperty(name string) []string {
	values := e.Properties[name]
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
