package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/i474232898/weather-dashboard/internal/upstream"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	openWeatherBaseURL = "https://api.openweathermap.org"

	currentPath   = "/data/2.5/weather"
	oneCallPath   = "/data/2.5/onecall"
	threeHourPath = "/data/2.5/forecast"
)

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap.
type OpenWeatherProvider struct {
	apiKey string
	client *upstream.Client
	logger *slog.Logger
}

// Options tune the outbound client. BaseURL is overridden in tests.
type Options struct {
	BaseURL string
	Client  upstream.Config
}

func NewOpenWeatherProvider(apiKey string, opts Options) *OpenWeatherProvider {
	cfg := opts.Client
	cfg.Name = "openweathermap"
	cfg.BaseURL = opts.BaseURL
	if cfg.BaseURL == "" {
		cfg.BaseURL = openWeatherBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenWeatherProvider{
		apiKey: apiKey,
		client: upstream.New(cfg),
		logger: logger.With("provider", cfg.Name),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.client.Name()
}

// FetchCurrent requests current conditions by coordinates, or by city name
// when coordinates are absent.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, q weather.Query) (*weather.CurrentConditions, error) {
	if p.apiKey == "" {
		return nil, weather.ErrNotConfigured
	}

	values := p.baseValues()
	if q.HasCoordinates() {
		values.Set("lat", formatCoord(*q.Lat))
		values.Set("lon", formatCoord(*q.Lon))
	} else {
		values.Set("q", q.City)
	}

	body, err := p.client.Get(ctx, currentPath, values)
	if err != nil {
		return nil, err
	}

	var payload weather.CurrentConditions
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrNormalizationRejected, err)
	}
	return &payload, nil
}

// ProbePrimary asks the One Call endpoint. Availability depends on the
// subscription behind the key and is checked on every request.
func (p *OpenWeatherProvider) ProbePrimary(ctx context.Context, lat, lon float64) weather.ProbeResult[weather.Forecast] {
	return probe[weather.Forecast](ctx, p, oneCallPath, lat, lon)
}

// ProbeSecondary asks the 5 day / 3 hour forecast endpoint.
func (p *OpenWeatherProvider) ProbeSecondary(ctx context.Context, lat, lon float64) weather.ProbeResult[weather.ForecastList] {
	return probe[weather.ForecastList](ctx, p, threeHourPath, lat, lon)
}

func probe[T any](ctx context.Context, p *OpenWeatherProvider, path string, lat, lon float64) weather.ProbeResult[T] {
	if p.apiKey == "" {
		return weather.ProbeResult[T]{Err: weather.ErrNotConfigured}
	}

	values := p.baseValues()
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))

	body, err := p.client.Get(ctx, path, values)
	if err != nil {
		p.logger.Info("forecast tier probe failed", "path", path, "status", upstream.StatusOf(err), "err", err)
		return weather.ProbeResult[T]{Status: upstream.StatusOf(err), Err: err}
	}

	var payload T
	if err := json.Unmarshal(body, &payload); err != nil {
		p.logger.Warn("forecast tier returned unparseable body", "path", path, "err", err)
		return weather.ProbeResult[T]{Status: 200, Err: errors.Join(errUnparseable, err)}
	}
	return weather.ProbeResult[T]{Available: true, Payload: &payload, Status: 200}
}

var errUnparseable = errors.New("unparseable forecast body")

func (p *OpenWeatherProvider) baseValues() url.Values {
	values := url.Values{}
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	return values
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var _ weather.Provider = (*OpenWeatherProvider)(nil)
