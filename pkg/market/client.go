// Package market implements the rate-limited Torn item market fetcher. It
// turns item ids into normalized 100-slot order-book snapshots, surviving an
// unreliable upstream through auth-mode fallback, error classification, and
// growing backoff.
package market

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/kzon-tools/torn-market-analyzer/pkg/ratelimit"
)

// Prometheus metrics for market fetch operations.
var (
	marketRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_requests_total",
		Help: "Total itemmarket requests by auth mode and result",
	}, []string{"auth_mode", "result"})

	marketRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "market_request_duration_seconds",
		Help:    "itemmarket request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	marketErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_errors_total",
		Help: "Total itemmarket errors by class",
	}, []string{"class"})

	marketBackoffSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "market_retry_backoff_seconds",
		Help:    "Backoff duration between retry cycles",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	marketRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_retries_total",
		Help: "Total retry cycles entered",
	})

	marketExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_retry_exhausted_total",
		Help: "Total items that exhausted all retry cycles",
	})
)

// Error classes for observability.
const (
	classAuthMode  = "auth_mode"
	classTransient = "transient"
	classFatal     = "fatal"
	classNetwork   = "network"
)

// AuthMode is one of the three conventions for presenting the API key.
// Within one attempt cycle the modes are tried in declaration order.
type AuthMode int

const (
	// AuthHeaderPascal sends "Authorization: ApiKey <key>".
	AuthHeaderPascal AuthMode = iota

	// AuthHeaderUpper sends "Authorization: APIKEY <key>".
	AuthHeaderUpper

	// AuthQuery sends the raw key as the "key" query parameter.
	AuthQuery
)

// authModes is the fixed fallback order within one attempt cycle.
var authModes = [3]AuthMode{AuthHeaderPascal, AuthHeaderUpper, AuthQuery}

// String returns the mode's metric/log label.
func (m AuthMode) String() string {
	switch m {
	case AuthHeaderPascal:
		return "header_pascal"
	case AuthHeaderUpper:
		return "header_upper"
	case AuthQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Config holds the fetcher configuration.
type Config struct {
	// BaseURL of the market API.
	BaseURL string

	// APIKey is the public read-only key presented under each auth mode.
	APIKey string

	// Timeout per HTTP request.
	Timeout time.Duration

	// RetryCycles bounds how many backoff-and-restart cycles one item gets
	// before its fetch is declared exhausted.
	RetryCycles int

	// InitialBackoff is the first backoff duration of a fetch. It grows by
	// BackoffFactor per occurrence and is clamped to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64

	// MaxConcurrency is the worker count for batch fetches. The HTTP
	// connection pool is sized to match so blocked workers never starve
	// connection reuse.
	MaxConcurrency int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:        "https://api.torn.com/v2",
		APIKey:         apiKey,
		Timeout:        30 * time.Second,
		RetryCycles:    4,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  1.6,
		MaxConcurrency: 4,
	}
}

// Client fetches itemmarket snapshots through a shared rate limit bucket.
type Client struct {
	httpClient *http.Client
	bucket     *ratelimit.Bucket
	config     Config
	logger     zerolog.Logger
}

// New creates a market client. The bucket is shared by reference: all calls
// issued by this client debit the same token budget.
func New(cfg Config, bucket *ratelimit.Bucket, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if bucket == nil {
		return nil, fmt.Errorf("rate limit bucket is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.RetryCycles < 1 {
		return nil, fmt.Errorf("retry_cycles must be >= 1 (got %d)", cfg.RetryCycles)
	}
	if cfg.BackoffFactor <= 1 {
		return nil, fmt.Errorf("backoff_factor must be > 1 (got %v)", cfg.BackoffFactor)
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        cfg.MaxConcurrency * 2,
				MaxIdleConnsPerHost: cfg.MaxConcurrency,
			},
		},
		bucket: bucket,
		config: cfg,
		logger: logger.With().Str("component", "market-client").Logger(),
	}, nil
}

// applyAuth places the API key on the request according to the auth mode.
func (c *Client) applyAuth(req *http.Request, mode AuthMode) {
	switch mode {
	case AuthHeaderPascal:
		req.Header.Set("Authorization", "ApiKey "+c.config.APIKey)
	case AuthHeaderUpper:
		req.Header.Set("Authorization", "APIKEY "+c.config.APIKey)
	case AuthQuery:
		q := req.URL.Query()
		q.Set("key", c.config.APIKey)
		req.URL.RawQuery = q.Encode()
	}
}

// itemMarketURL builds the per-item endpoint URL.
func (c *Client) itemMarketURL(itemID int) string {
	return fmt.Sprintf("%s/market/%d/itemmarket?limit=%d&offset=0", c.config.BaseURL, itemID, MaxListings)
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
