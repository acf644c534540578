package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the environment leaves a setting empty.
const (
	DefaultAddr               = ":8080"
	DefaultCacheTTL           = time.Hour
	DefaultMaxEntities        = 50
	DefaultWorkers            = 8
	DefaultRateLimitPerMinute = 100
	DefaultSanctionsTimeout   = 10 * time.Second
	DefaultSearchTimeout      = 8 * time.Second
	DefaultSearchResultsLimit = 5
	DefaultSerperURL          = "https://google.serper.dev/search"
	DefaultOpenSanctionsURL   = "https://api.opensanctions.org"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr     string
	LogLevel string

	Redis    RedisConfig
	CacheTTL time.Duration

	MaxEntitiesPerRequest int
	Workers               int
	RateLimitPerMinute    int

	SanctionsTimeout   time.Duration
	SearchTimeout      time.Duration
	SearchResultsLimit int

	OpenSanctionsAPIKey string
	OpenSanctionsURL    string
	SerperAPIKey        string
	SerperURL           string

	AdminToken string
	APIKeys    []string

	// RulesFile optionally overrides trusted domains and risk keywords.
	RulesFile string
	Rules     Rules
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	p := envParser{}
	cfg := Server{
		Addr:     envOr("SCREENER_ADDR", DefaultAddr),
		LogLevel: envOr("LOG_LEVEL", "info"),

		Redis:    redisFromEnv(&p),
		CacheTTL: p.seconds("CACHE_EXPIRY_SECONDS", DefaultCacheTTL),

		MaxEntitiesPerRequest: p.positiveInt("MAX_ENTITIES_PER_REQUEST", DefaultMaxEntities),
		Workers:               p.positiveInt("WORKERS", DefaultWorkers),
		RateLimitPerMinute:    p.nonNegativeInt("RATE_LIMIT_PER_MINUTE", DefaultRateLimitPerMinute),

		SanctionsTimeout:   p.seconds("OPENSANCTIONS_TIMEOUT", DefaultSanctionsTimeout),
		SearchTimeout:      p.seconds("WEB_SEARCH_TIMEOUT", DefaultSearchTimeout),
		SearchResultsLimit: p.positiveInt("SEARCH_RESULTS_LIMIT", DefaultSearchResultsLimit),

		OpenSanctionsAPIKey: strings.TrimSpace(os.Getenv("OPENSANCTIONS_API_KEY")),
		OpenSanctionsURL:    envOr("OPENSANCTIONS_API_URL", DefaultOpenSanctionsURL),
		SerperAPIKey:        strings.TrimSpace(os.Getenv("SERPER_API_KEY")),
		SerperURL:           envOr("SERPER_API_URL", DefaultSerperURL),

		AdminToken: strings.TrimSpace(os.Getenv("ADMIN_TOKEN")),
		APIKeys:    splitList(os.Getenv("API_KEYS")),

		RulesFile: strings.TrimSpace(os.Getenv("SCREENING_RULES_FILE")),
	}
	if p.err != nil {
		return Server{}, p.err
	}

	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return Server{}, err
		}
		cfg.Rules = *rules
	}
	return cfg, nil
}

// Warnings lists settings that leave the service degraded but runnable.
func (s Server) Warnings() []string {
	var out []string
	if s.OpenSanctionsAPIKey == "" {
		out = append(out, "OPENSANCTIONS_API_KEY is not set; sanctions lookups will report not_configured")
	}
	if s.SerperAPIKey == "" {
		out = append(out, "SERPER_API_KEY is not set; web search will report not_configured")
	}
	if s.Redis.URL == "" {
		out = append(out, "REDIS_URL is not set; using the in-process cache")
	}
	if s.AdminToken == "" {
		out = append(out, "ADMIN_TOKEN is not set; cache administration endpoints are disabled")
	}
	if len(s.APIKeys) == 0 {
		out = append(out, "API_KEYS is not set; /check is unauthenticated")
	}
	return out
}

// envParser collects the first malformed value so FromEnv can report it once.
type envParser struct {
	err error
}

func (p *envParser) integer(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(fmt.Errorf("%s: %q is not an integer", key, raw))
		return def
	}
	return v
}

func (p *envParser) positiveInt(key string, def int) int {
	v := p.integer(key, def)
	if v <= 0 {
		p.fail(fmt.Errorf("%s: must be positive, got %d", key, v))
		return def
	}
	return v
}

func (p *envParser) nonNegativeInt(key string, def int) int {
	v := p.integer(key, def)
	if v < 0 {
		p.fail(fmt.Errorf("%s: must not be negative, got %d", key, v))
		return def
	}
	return v
}

// seconds reads a whole number of seconds.
func (p *envParser) seconds(key string, def time.Duration) time.Duration {
	v := p.positiveInt(key, int(def/time.Second))
	return time.Duration(v) * time.Second
}

func (p *envParser) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
