// Package openaiclient builds rate-limited, retrying clients for
// OpenAI-compatible APIs.
package openaiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL           string
	APIKeyEnv         string
	Timeout           time.Duration
	RequestsPerSecond float64

	// MaxRetries defaults to 5 when zero; a negative value disables retries.
	MaxRetries int
}

// Client pairs a go-openai client with a request limiter and retry policy.
type Client struct {
	api        *openai.Client
	limiter    *rate.Limiter
	maxRetries int
	sleep      func(context.Context, time.Duration) error
}

// New creates a client from cfg. The API key is read from the environment
// variable named by cfg.APIKeyEnv.
func New(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	oc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: t}
	return newClient(openai.NewClientWithConfig(oc), cfg), nil
}

func newClient(api *openai.Client, cfg Config) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	retries := cfg.MaxRetries
	switch {
	case retries == 0:
		retries = 5
	case retries < 0:
		retries = 0
	}
	return &Client{
		api:        api,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries: retries,
		sleep:      sleepCtx,
	}
}

// API returns the underlying go-openai client.
func (c *Client) API() *openai.Client { return c.api }

// Do runs call under the rate limiter, retrying on throttling and server
// errors with exponential backoff.
func (c *Client) Do(ctx context.Context, call func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if werr := c.limiter.Wait(ctx); werr != nil {
			return werr
		}
		err = call(ctx)
		if err == nil || !Retryable(err) || attempt == c.maxRetries {
			return err
		}
		slog.Debug("retrying openai request", "attempt", attempt+1, "error", err)
		if serr := c.sleep(ctx, retryDelay(attempt)); serr != nil {
			return serr
		}
	}
	return err
}

// Retryable reports whether err is a throttling or server-side API error.
func Retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 200 * time.Millisecond
	// exponential backoff capped at 5s
	d := base << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
