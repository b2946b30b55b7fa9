package infra

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	locationSharingPath = "/maps/rpc/locationsharing/read"

	// mapDescriptor is the fixed map-render descriptor the web client sends.
	// The endpoint rejects requests without it; its content is opaque.
	mapDescriptor = "!1m7!8m6!1m3!1i14!2i8413!3i5385!2i6!3x4095!2m3!1e0!2sm!3i407105169!3m7!2sen!5e1105!12m4!1e68!2m2!1sset!2sRoadmap!4e1!5m4!1e4!8m2!1e0!1e1!6m9!1e12!2i2!26m1!4b1!30m1!1f1.3953487873077393!39b1!44e1!50e0!23i4111425"

	defaultMaxBody = 8 << 20
)

// StatusError is returned for non-2xx responses from the location endpoint.
type StatusError struct {
	StatusCode int
	Body       string // Leading bytes only
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Body)
}

// LocationClient fetches the raw location-sharing payload for one session.
// It never retries; callers own the retry policy.
type LocationClient struct {
	baseURL    string
	session    SessionConfig
	userAgent  string
	cookies    *CookieJar
	httpClient *http.Client
	breaker    *CircuitBreaker
	limiter    *RateLimiter
	maxBody    int64
}

// LocationClientOption customizes a LocationClient.
type LocationClientOption func(*LocationClient)

// WithCircuitBreaker replaces the breaker built from the config.
func WithCircuitBreaker(cb *CircuitBreaker) LocationClientOption {
	return func(c *LocationClient) { c.breaker = cb }
}

// WithRateLimiter replaces the limiter built from the config.
func WithRateLimiter(rl *RateLimiter) LocationClientOption {
	return func(c *LocationClient) { c.limiter = rl }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) LocationClientOption {
	return func(c *LocationClient) { c.httpClient = hc }
}

// NewLocationClient creates a client for the session described by cfg.
func NewLocationClient(cfg *Config, cookies *CookieJar, opts ...LocationClientOption) *LocationClient {
	c := &LocationClient{
		baseURL:   strings.TrimRight(cfg.API.BaseURL, "/"),
		session:   cfg.Session,
		userAgent: cfg.UserAgent(),
		cookies:   cookies,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		breaker: NewCircuitBreaker(cfg.BreakerConfig("location-sharing")),
		limiter: NewRateLimiter(cfg.API.RateBurst, cfg.API.RatePerSec),
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestURL returns the fully parameterized endpoint URL.
func (c *LocationClient) RequestURL() string {
	q := url.Values{}
	q.Set("authuser", strconv.Itoa(c.session.AuthUser))
	q.Set("hl", c.session.Language)
	q.Set("gl", c.session.Country)
	q.Set("pb", mapDescriptor)
	return c.baseURL + locationSharingPath + "?" + q.Encode()
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *LocationClient) Breaker() *CircuitBreaker {
	return c.breaker
}

// Fetch performs one request and returns the raw body.
func (c *LocationClient) Fetch(ctx context.Context) ([]byte, error) {
	if err := c.breaker.Guard(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.doFetch(ctx)
	if err != nil {
		// A cancelled caller says nothing about endpoint health.
		if ctx.Err() == nil {
			c.breaker.RecordFailure()
		}
		return nil, err
	}
	c.breaker.RecordSuccess()

	slog.Debug("Location payload fetched",
		slog.Int("bytes", len(body)),
		slog.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *LocationClient) doFetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.RequestURL(), nil)
	if err != nil {
		return nil, err
	}

	// Browser-like User-Agent; the endpoint treats unknown agents differently.
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", c.session.Language)
	if c.cookies != nil {
		c.cookies.AddTo(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("location request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read location body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("location body exceeds %d bytes", c.maxBody)
	}
	return body, nil
}
