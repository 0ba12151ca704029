package overpass

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ladepause/ladepause/internal/cache"
	"github.com/ladepause/ladepause/internal/geo"
	"github.com/ladepause/ladepause/internal/model"
	"github.com/ladepause/ladepause/internal/util"
)

// fetchSleepFunc is the sleep function used between retries (injectable for tests)
var fetchSleepFunc = time.Sleep

// HTTPSource queries the interpreter with a plain GET per tile
type HTTPSource struct {
	httpClient   *http.Client
	endpoint     string
	userAgent    string
	maxBytes     int64
	maxRetries   int
	queryTimeout int
	rules        *model.RuleSet
	cache        cache.Cache
}

// NewHTTPSource creates an HTTP source from the configuration.
// A nil cache disables caching.
func NewHTTPSource(cfg *model.Config, rules *model.RuleSet, c cache.Cache) *HTTPSource {
	return &HTTPSource{
		httpClient:   NewHTTPClient(cfg.HTTP),
		endpoint:     cfg.Overpass.Endpoint,
		userAgent:    cfg.HTTP.UserAgent,
		maxBytes:     cfg.HTTP.MaxBodyBytes,
		maxRetries:   cfg.HTTP.MaxRetries,
		queryTimeout: cfg.Overpass.QueryTimeout,
		rules:        rules,
		cache:        c,
	}
}

// NewHTTPClient builds the client shared by both source kinds
func NewHTTPClient(cfg model.HTTPConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}
}

// FetchTile fetches and decodes the raw points of one tile
func (s *HTTPSource) FetchTile(ctx context.Context, tile geo.Tile) ([]model.RawPoint, error) {
	query := BuildQuery(tile.BBox(), s.rules, s.queryTimeout, OutCenter)
	key := cache.CacheKey(s.endpoint, query)

	if s.cache != nil {
		if body, ok := s.cache.Get(key); ok {
			if points, err := Decode(body); err == nil {
				return points, nil
			}
			_ = s.cache.Delete(key)
		}
	}

	body, err := s.FetchWithRetry(ctx, query)
	if err != nil {
		return nil, err
	}

	points, err := Decode(body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Zero lets every cache layer apply its configured TTL
		_ = s.cache.Set(key, body, 0)
	}
	return points, nil
}

// Fetch runs one query and returns the raw body
func (s *HTTPSource) Fetch(ctx context.Context, query string) ([]byte, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := u.Query()
	q.Set("data", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// FetchWithRetry retries transient failures with exponential backoff.
// With maxRetries 0 a failure is returned immediately.
func (s *HTTPSource) FetchWithRetry(ctx context.Context, query string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		body, err := s.Fetch(ctx, query)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == s.maxRetries {
			break
		}
		fetchSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
	}
	return nil, lastErr
}

// isRetryableFetchError returns true for 5xx, 429 and transient network errors
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	s := strings.ToLower(err.Error())
	return strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "timeout")
}
