package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-dashboard/internal/upstream"
)

const (
	googleName           = "google"
	googleDefaultTimeout = 10 * time.Second

	// Messages the library returns for the ZERO_RESULTS and OVER_QUERY_LIMIT
	// statuses.
	googleNoResults = "No results found."
	googleOverQuota = "You are over your quota."
)

// Google geocodes with the Google Maps Geocoding API. The underlying library
// keeps its key and URL in package variables, so only one Google backend may
// exist per process.
//
// The library takes no context and uses a client without a timeout, so each
// lookup runs in its own goroutine and is abandoned once the deadline passes.
type Google struct {
	apiKey  string
	timeout time.Duration
	logger  *slog.Logger

	inflight sync.WaitGroup
}

// NewGoogle uses opts.Client.Timeout as the per-lookup deadline. A non-empty
// opts.BaseURL replaces the library's endpoint.
func NewGoogle(apiKey string, opts Options) *Google {
	logger := opts.Client.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Client.Timeout
	if timeout <= 0 {
		timeout = googleDefaultTimeout
	}

	geocoder.ApiKey = apiKey
	if opts.BaseURL != "" {
		geocoder.ApiUrl = strings.TrimSuffix(opts.BaseURL, "?") + "?"
	}
	return &Google{apiKey: apiKey, timeout: timeout, logger: logger.With("provider", googleName)}
}

func (g *Google) Name() string {
	return googleName
}

// Search resolves query to its best match. The forward lookup only yields
// coordinates, so the match is labelled with the query itself and carries no
// country code. limit only bounds the result at one.
func (g *Google) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var loc geocoder.Location
	err := g.do(ctx, func() (err error) {
		loc, err = geocoder.Geocoding(geocoder.Address{City: query})
		return err
	})
	if isNoResults(err) {
		return []Place{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("google geocoding %q: %w", query, err)
	}
	return []Place{{PlaceName: query, Lat: loc.Latitude, Lon: loc.Longitude}}, nil
}

func (g *Google) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	var addrs []geocoder.Address
	err := g.do(ctx, func() (err error) {
		addrs, err = geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
		return err
	})
	if isNoResults(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("google reverse geocoding: %w", err)
	}
	if len(addrs) == 0 {
		return nil, nil
	}
	return &Place{PlaceName: labelOf(addrs[0], ""), Lat: lat, Lon: lon}, nil
}

// do runs call under the backend's deadline. Failures come back as
// *upstream.StatusError; an expired deadline has status 0.
func (g *Google) do(ctx context.Context, call func() error) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return &upstream.StatusError{Provider: googleName, Err: err}
	}

	done := make(chan error, 1)
	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("malformed response: %v", r)
			}
		}()
		done <- call()
	}()

	select {
	case err := <-done:
		return googleError(err)
	case <-ctx.Done():
		g.logger.Warn("google lookup abandoned", "timeout", g.timeout, "err", ctx.Err())
		return &upstream.StatusError{Provider: googleName, Err: ctx.Err()}
	}
}

func googleError(err error) error {
	switch {
	case err == nil:
		return nil
	case err.Error() == googleNoResults:
		return &upstream.StatusError{Provider: googleName, Status: http.StatusNotFound, Message: googleNoResults}
	case err.Error() == googleOverQuota:
		return &upstream.StatusError{Provider: googleName, Status: http.StatusTooManyRequests, Message: googleOverQuota}
	default:
		return &upstream.StatusError{Provider: googleName, Err: err}
	}
}

func isNoResults(err error) bool {
	return upstream.StatusOf(err) == http.StatusNotFound
}

func labelOf(a geocoder.Address, fallback string) string {
	if a.FormattedAddress != "" {
		return a.FormattedAddress
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{a.City, a.State, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ", ")
}
