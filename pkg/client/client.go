// Package client provides the YouTube Data API HTTP client with quota
// tracking, ETag caching, retries and error classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/cache"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/quota"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for Data API client operations.
var (
	ytRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt_requests_total",
		Help: "Total Data API requests by resource and status",
	}, []string{"resource", "status"})

	ytRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yt_request_duration_seconds",
		Help:    "Data API request duration in seconds by resource",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	ytErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yt_errors_total",
		Help: "Total Data API errors by class",
	}, []string{"class"})
)

// DefaultBaseURL is the Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Client is the Data API client.
type Client struct {
	httpClient *http.Client
	quota      *quota.Tracker
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Redis backs the response cache and the shared quota ledger. Nil
	// disables caching and keeps the ledger in memory.
	Redis *redis.Client

	// APIKey is sent as the key query parameter on every request.
	APIKey string

	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	UserAgent string

	// Quota
	DailyQuota int

	// Caching
	CacheTTL time.Duration

	// Retry
	MaxRetries     int
	InitialBackoff time.Duration

	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redisClient *redis.Client, apiKey string) Config {
	return Config{
		Redis:          redisClient,
		APIKey:         apiKey,
		BaseURL:        DefaultBaseURL,
		UserAgent:      "yt-channel-pipeline/1.0",
		DailyQuota:     quota.DefaultDailyLimit,
		CacheTTL:       cache.DefaultTTL,
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
		Timeout:        30 * time.Second,
	}
}

// New creates a new Data API client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "yt-channel-pipeline/1.0"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "yt-client").Logger()

	quotaCfg := quota.DefaultConfig()
	if cfg.DailyQuota > 0 {
		quotaCfg.DailyLimit = cfg.DailyQuota
	}

	var (
		store        quota.Store = quota.NewMemoryStore()
		cacheManager *cache.Manager
	)
	if cfg.Redis != nil {
		store = quota.NewRedisStore(cfg.Redis)
		cacheManager = cache.NewManager(cfg.Redis, cfg.CacheTTL)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		quota:      quota.NewTracker(store, quotaCfg, logger),
		cache:      cacheManager,
		config:     cfg,
		logger:     logger,
	}, nil
}

// Do performs a request with quota gating, caching, and retries. Any non-2xx
// answer is returned as an error; the response is only returned on success.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	resource := path.Base(req.URL.Path)

	startTime := time.Now()
	defer func() {
		ytRequestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: quota gate
	allowed, err := c.quota.ShouldAllowRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if !allowed {
		ytRequestsTotal.WithLabelValues(resource, "quota_blocked").Inc()
		return nil, &APIError{
			ErrorClass: ErrorClassQuota,
			Message:    "blocked by local quota ledger",
			Err:        ErrQuotaExhausted,
		}
	}

	// Step 2: cache lookup; the API key is stripped from the key
	cacheKey := cache.CacheKey{Resource: resource, Params: req.URL.Query()}

	var cachedEntry *cache.CacheEntry
	if c.cache != nil {
		cachedEntry, err = c.cache.Get(ctx, cacheKey)
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("resource", resource).Msg("Cache get error")
		}
	}

	// Step 3: conditional request
	if cache.ShouldMakeConditionalRequest(cachedEntry) {
		cache.AddConditionalHeaders(req, cachedEntry)
		cache.ConditionalRequestsSent.Inc()
		c.logger.Debug().
			Str("resource", resource).
			Str("etag", cachedEntry.ETag).
			Msg("Making conditional request")
	}

	c.authorize(req)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("resource", resource).
		Str("method", req.Method).
		Msg("Executing Data API request")

	// Step 4: execute with retries
	var resp *http.Response
	retryErr := Retry(ctx, PolicyWith(c.config.MaxRetries, c.config.InitialBackoff), Classify, func() error {
		var reqErr error
		resp, reqErr = c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("resource", resource).Msg("HTTP request failed")
			ytErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			ytRequestsTotal.WithLabelValues(resource, "network_error").Inc()
			return reqErr
		}

		if err := c.quota.Record(ctx, quota.CostList); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to record quota usage")
		}

		ytRequestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusNotModified {
			return nil
		}

		if err := CheckResponse(resp); err != nil {
			resp.Body.Close()
			apiErr := err.(*APIError)
			ytErrorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()

			c.logger.Warn().
				Str("resource", resource).
				Int("status", apiErr.StatusCode).
				Str("reason", apiErr.Reason).
				Str("error_class", string(apiErr.ErrorClass)).
				Msg("Data API request error")

			if apiErr.ErrorClass == ErrorClassQuota {
				if err := c.quota.MarkExhausted(ctx); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to mark quota exhausted")
				}
				apiErr.Err = fmt.Errorf("%w: %w", ErrQuotaExhausted, apiErr.Err)
			}
			return apiErr
		}

		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	// Step 5: 304 Not Modified serves the cached body
	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		if cachedEntry == nil {
			return nil, &APIError{
				StatusCode: http.StatusNotModified,
				ErrorClass: ErrorClassClient,
				Message:    "not modified without a cached entry",
			}
		}

		c.logger.Debug().Str("resource", resource).Msg("304 Not Modified - using cache")
		cache.NotModifiedResponses.Inc()
		if err := c.cache.Refresh(ctx, cacheKey, cachedEntry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cache entry")
		}
		return cache.EntryToResponse(cachedEntry, req), nil
	}

	// Step 6: store fresh responses
	if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp, c.cache.TTL())
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to cache response")
		} else {
			c.logger.Debug().
				Str("resource", resource).
				Dur("ttl", entry.TTL()).
				Msg("Cached response")
		}
	}

	return resp, nil
}

func (c *Client) authorize(req *http.Request) {
	q := req.URL.Query()
	if q.Get("key") != "" {
		return
	}
	q.Set("key", c.config.APIKey)
	req.URL.RawQuery = q.Encode()
}

// Get performs a GET request against a Data API resource such as "videos".
func (c *Client) Get(ctx context.Context, resource string, params url.Values) (*http.Response, error) {
	endpoint := c.config.BaseURL + "/" + strings.Trim(resource, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// GetJSON performs Get and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, resource string, params url.Values, out any) error {
	resp, err := c.Get(ctx, resource, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

// QuotaState returns today's quota ledger.
func (c *Client) QuotaState(ctx context.Context) (*quota.State, error) {
	return c.quota.GetState(ctx)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager, nil when caching is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
