// Package upstream is the single outbound HTTP path to third-party providers.
//
// Calls are never retried: a failed request surfaces immediately as a
// *StatusError and the interactive caller is expected to resubmit.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable matches every *StatusError.
	ErrUnavailable = errors.New("upstream unavailable")

	errCircuitOpen = errors.New("circuit breaker open")
)

// StatusError describes a non-success upstream answer. Status is 0 when the
// request never produced a response (transport failure, timeout, open breaker).
type StatusError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *StatusError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
	}
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) Is(target error) bool { return target == ErrUnavailable }

// StatusOf returns the upstream status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// Config bundles client and resilience settings for one provider.
type Config struct {
	Name    string
	BaseURL string
	Timeout time.Duration

	// RPS <= 0 disables rate limiting.
	RPS   float64
	Burst int

	// Breaker wraps calls in a circuit breaker. Off by default.
	Breaker bool

	Logger *slog.Logger
}

// Client issues GET requests against one provider.
type Client struct {
	name    string
	http    *resty.Client
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

func New(cfg Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "weather-dashboard/1.0")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		name:    cfg.Name,
		http:    httpClient,
		limiter: limiter,
		logger:  logger.With("provider", cfg.Name),
	}

	if cfg.Breaker {
		c.circuit = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
			// Client errors such as "city not found" say nothing about provider health.
			IsSuccessful: func(err error) bool {
				status := StatusOf(err)
				return err == nil || (status >= 400 && status < 500 && status != http.StatusTooManyRequests)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
			},
		})
	}

	return c
}

// Name returns the provider name used in errors and logs.
func (c *Client) Name() string {
	return c.name
}

// Get performs a single GET of path with query and returns the raw body of a
// 2xx response. Any other outcome is a *StatusError.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &StatusError{Provider: c.name, Err: fmt.Errorf("rate limit wait canceled: %w", err)}
	}

	if c.circuit == nil {
		return c.do(ctx, path, query)
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.do(ctx, path, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &StatusError{Provider: c.name, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
	}
	if err != nil {
		return nil, err
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, path string, query url.Values) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		err = redactURL(err)
		c.logger.Error("upstream request failed", "path", path, "err", err)
		return nil, &StatusError{Provider: c.name, Err: err}
	}

	c.logger.Debug("upstream response",
		"path", path,
		"status", resp.StatusCode(),
		"duration", resp.Time(),
		"bytes", len(resp.Body()),
	)

	if !resp.IsSuccess() {
		return nil, &StatusError{
			Provider: c.name,
			Status:   resp.StatusCode(),
			Message:  upstreamMessage(resp.Body()),
		}
	}
	return resp.Body(), nil
}

// upstreamMessage extracts the "message" field most providers put in error bodies.
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// redactURL drops the query string from *url.Error so API keys never reach
// logs or error messages.
func redactURL(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	if i := strings.IndexByte(ue.URL, '?'); i >= 0 {
		ue.URL = ue.URL[:i]
	}
	return err
}
