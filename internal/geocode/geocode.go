// Package geocode turns place queries into coordinates and coordinates into
// place labels.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrNotConfigured = errors.New("geocoding provider not configured")

const (
	DefaultLimit = 5
	MaxLimit     = 10
)

// Place is one geocoding match.
type Place struct {
	PlaceName   string  `json:"placeName"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	CountryCode string  `json:"countryCode"`
}

// Geocoder is implemented by each provider backend. Reverse returns a nil
// place when the provider knows nothing at the coordinates.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Place, error)
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// FallbackLabel is the label used when no place name is known.
func FallbackLabel(lat, lon float64) string {
	return fmt.Sprintf("Location (%.4f, %.4f)", lat, lon)
}

type Service struct {
	geocoder Geocoder
	logger   *slog.Logger
}

func NewService(g Geocoder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{geocoder: g, logger: logger.With("component", "geocode", "provider", g.Name())}
}

// Search returns up to limit matches; limit is clamped to [1, MaxLimit].
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	places, err := s.geocoder.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// PlaceName labels the coordinates. Provider failures and empty answers both
// fall back to FallbackLabel; only a missing credential is an error.
func (s *Service) PlaceName(ctx context.Context, lat, lon float64) (string, error) {
	place, err := s.geocoder.Reverse(ctx, lat, lon)
	if errors.Is(err, ErrNotConfigured) {
		return "", err
	}
	if err != nil {
		s.logger.Warn("reverse geocoding failed", "lat", lat, "lon", lon, "err", err)
		return FallbackLabel(lat, lon), nil
	}
	if place == nil || place.PlaceName == "" {
		return FallbackLabel(lat, lon), nil
	}
	return place.PlaceName, nil
}
