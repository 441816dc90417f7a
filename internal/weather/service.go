package weather

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/i474232898/weather-dashboard/internal/upstream"
)

// Service runs the weather pipeline: current conditions, forecast tier
// selection, reshaping and normalization. Upstream calls are sequential
// because the forecast probe may need coordinates resolved by the
// current-conditions call.
type Service struct {
	provider Provider
	logger   *slog.Logger
}

// NewService creates a new Service.
func NewService(provider Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		logger:   logger.With("component", "weather"),
	}
}

// Get fetches and normalizes the weather for q. A failing current-conditions
// fetch is returned to the caller; failing forecast tiers only degrade the
// result to empty hourly/daily arrays.
func (s *Service) Get(ctx context.Context, q Query) (NormalizedWeather, error) {
	if !q.HasCoordinates() && q.City == "" {
		return NormalizedWeather{}, ErrInputRejected
	}

	current, err := s.provider.FetchCurrent(ctx, q)
	if err != nil {
		s.logger.Error("current weather fetch failed", queryAttrs(q,
			"provider", s.provider.Name(),
			"status", upstream.StatusOf(err),
			"err", err,
		)...)
		return NormalizedWeather{}, fmt.Errorf("fetch current weather: %w", err)
	}

	var forecast *Forecast
	if lat, lon, ok := resolveCoordinates(q, current); ok {
		forecast = s.forecast(ctx, lat, lon)
	} else {
		s.logger.Warn("no coordinates to probe forecast with", "city", q.City)
	}

	normalized, err := Normalize(current, q.LocationName, forecast)
	if err != nil {
		s.logger.Error("weather payload rejected", "provider", s.provider.Name(), "err", err)
		return NormalizedWeather{}, err
	}

	s.logger.Debug("weather normalized",
		"location", normalized.LocationName,
		"hourly", len(normalized.HourlyForecast),
		"daily", len(normalized.DailyForecast),
	)
	return normalized, nil
}

// forecast walks the tiers in order and returns nil when neither answers.
func (s *Service) forecast(ctx context.Context, lat, lon float64) *Forecast {
	primary := s.provider.ProbePrimary(ctx, lat, lon)
	if primary.Available && primary.Payload != nil {
		return primary.Payload
	}
	s.logger.Info("primary forecast tier unavailable",
		"status", primary.Status,
		"err", primary.Err,
	)

	secondary := s.provider.ProbeSecondary(ctx, lat, lon)
	if secondary.Available && secondary.Payload != nil {
		if reshaped := Reshape(secondary.Payload); reshaped != nil {
			return reshaped
		}
		s.logger.Warn("secondary forecast tier returned no list")
		return nil
	}
	s.logger.Warn("secondary forecast tier unavailable; returning current conditions only",
		"status", secondary.Status,
		"err", secondary.Err,
	)
	return nil
}

// queryAttrs prepends the request's location to the log attributes.
func queryAttrs(q Query, attrs ...any) []any {
	if q.HasCoordinates() {
		return append([]any{"lat", *q.Lat, "lon", *q.Lon}, attrs...)
	}
	return append([]any{"city", q.City}, attrs...)
}

// resolveCoordinates prefers request coordinates, then the provider's.
func resolveCoordinates(q Query, current *CurrentConditions) (float64, float64, bool) {
	if q.HasCoordinates() {
		return *q.Lat, *q.Lon, true
	}
	if current == nil || current.Coord == nil || current.Coord.Lat == nil || current.Coord.Lon == nil {
		return 0, 0, false
	}
	return *current.Coord.Lat, *current.Coord.Lon, true
}
