package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"resty.dev/v3"

	"stockfetcher/internal/ratelimit"
	"stockfetcher/internal/retry"
)

const (
	// Default retry configuration
	DefaultMaxRetries     = 3
	DefaultRequestTimeout = 10 * time.Second
)

var (
	// DefaultRateLimitWait is the wait window after a 429 or 503 response
	DefaultRateLimitWait = retry.Window{Min: 10 * time.Second, Max: 20 * time.Second}
	// DefaultNetworkWait is the wait window after a transport failure
	DefaultNetworkWait = retry.Window{Min: 5 * time.Second, Max: 10 * time.Second}
)

// Options configures a Client
type Options struct {
	BaseURL       string
	Source        ratelimit.Source
	Timeout       time.Duration
	MaxRetries    int
	RateLimitWait retry.Window
	NetworkWait   retry.Window
	Limiter       *ratelimit.Limiter
	Sleeper       retry.Sleeper
	Rand          *rand.Rand
	Logger        *slog.Logger
}

// Client issues GET requests with bounded retries. Rate-limited responses and
// transport failures are retried after a randomized wait; every other non-200
// status fails the request at once.
type Client struct {
	http   *resty.Client
	opts   Options
	logger *slog.Logger
}

// NewClient creates a new retrying HTTP client. Zero-valued options fall back
// to the package defaults.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultRequestTimeout
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RateLimitWait == (retry.Window{}) {
		opts.RateLimitWait = DefaultRateLimitWait
	}
	if opts.NetworkWait == (retry.Window{}) {
		opts.NetworkWait = DefaultNetworkWait
	}
	if opts.Sleeper == nil {
		opts.Sleeper = retry.TimerSleeper{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Retries are driven by Get so the wait windows stay under our control.
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if opts.BaseURL != "" {
		client.SetBaseURL(opts.BaseURL)
	}

	return &Client{
		http:   client,
		opts:   opts,
		logger: logger.With("source", string(opts.Source)),
	}
}

// Close releases the underlying transport
func (c *Client) Close() error {
	return c.http.Close()
}

// Get fetches url, retrying per the client's policy. On success it returns the
// 200 response; otherwise it returns a nil response and an error, which is a
// *FetchError unless the context ended.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*resty.Response, error) {
	policy := retry.Policy[*resty.Response]{
		MaxAttempts: c.opts.MaxRetries,
		Classify:    c.classify,
		Sleeper:     c.opts.Sleeper,
		Rand:        c.opts.Rand,
		Logger:      c.logger,
		Name:        url,
	}

	return retry.Do(ctx, policy, func(ctx context.Context, attempt int) (*resty.Response, error) {
		if err := c.opts.Limiter.Wait(ctx, c.opts.Source); err != nil {
			return nil, err
		}

		c.logger.Debug("requesting", "url", url, "attempt", attempt)
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeaders(headers).
			Get(url)
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
}

// classify maps one attempt's outcome to a retry decision
func (c *Client) classify(resp *resty.Response, err error) retry.Decision {
	if err != nil {
		ferr := ClassifyTransportError(err)
		if errors.Is(ferr, context.Canceled) || !IsRetryable(ferr) {
			return retry.Decision{Action: retry.Abort, Err: ferr}
		}
		c.logger.Error("request failed", "error", err)
		return retry.Decision{Action: retry.Retry, Wait: c.opts.NetworkWait, Err: ferr}
	}

	status := resp.StatusCode()
	if status == http.StatusOK {
		return retry.Decision{Action: retry.Succeed}
	}

	ferr := ClassifyHTTPError(status).WithURL(resp.Request.URL)
	if ferr.Retryable {
		c.logger.Warn("rate limit hit", "status_code", status, "url", resp.Request.URL)
		return retry.Decision{Action: retry.Retry, Wait: c.opts.RateLimitWait, Err: ferr}
	}

	c.logger.Error("unexpected status code", "status_code", status, "url", resp.Request.URL)
	return retry.Decision{Action: retry.Abort, Err: ferr}
}
