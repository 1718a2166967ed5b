package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantica-labs/pulse/internal/core/domain"
	"github.com/quantica-labs/pulse/internal/logger"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 3
	defaultBaseDelay  = 500 * time.Millisecond
	maxResponseBytes  = 8 << 20
)

// Client wraps an HTTP client with rate limiting and bounded retries. All
// source connectors fetch through it so throttling and error mapping stay
// uniform.
type Client struct {
	http       *http.Client
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// ClientConfig tunes a Client. Zero values fall back to defaults.
type ClientConfig struct {
	Timeout     time.Duration
	MaxRetries  int
	BaseDelay   time.Duration
	RequestsSec float64
}

// NewClient builds a Client from cfg.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}
	delay := cfg.BaseDelay
	if delay <= 0 {
		delay = defaultBaseDelay
	}
	rps := cfg.RequestsSec
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries: retries,
		baseDelay:  delay,
	}
}

// GetJSON fetches url and decodes the response body into out. It retries
// transient failures (network errors, 5xx) with exponential backoff, maps
// 429 to a RateLimitError honoring Retry-After, and maps everything else
// that survives the retry budget to a ConnectionError tagged with source.
func (c *Client) GetJSON(ctx context.Context, source, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			logger.Debug("%s: retry %d/%d after %v", source, attempt, c.maxRetries, delay)
			select {
			case <-ctx.Done():
				return &domain.ConnectionError{Source: source, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.ConnectionError{Source: source, Err: err}
		}
		retryable, err := c.getOnce(ctx, source, url, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
	}
	return &domain.ConnectionError{Source: source, Err: fmt.Errorf("retries exhausted: %w", lastErr)}
}

func (c *Client) getOnce(ctx context.Context, source, url string, out any) (retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, &domain.ConnectionError{Source: source, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return true, &domain.ConnectionError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, &domain.RateLimitError{Source: source, RetryAfter: retryAfter(resp)}
	case resp.StatusCode >= 500:
		return true, &domain.ConnectionError{Source: source, Err: fmt.Errorf("server returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return false, &domain.ConnectionError{Source: source, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return true, &domain.ConnectionError{Source: source, Err: fmt.Errorf("reading body: %w", err)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, &domain.ConnectionError{Source: source, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return false, nil
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Minute
}
