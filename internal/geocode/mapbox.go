package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/upstream"
)

const (
	mapboxBaseURL    = "https://api.mapbox.com"
	mapboxPlacesPath = "/geocoding/v5/mapbox.places/"
)

type mapboxResponse struct {
	Features []mapboxFeature `json:"features"`
}

type mapboxFeature struct {
	ID         string    `json:"id"`
	PlaceName  string    `json:"place_name"`
	Center     []float64 `json:"center"`
	Properties struct {
		ShortCode string `json:"short_code"`
	} `json:"properties"`
	Context []struct {
		ID        string `json:"id"`
		ShortCode string `json:"short_code"`
	} `json:"context"`
}

// Options tune the outbound client. BaseURL is overridden in tests.
type Options struct {
	BaseURL string
	Client  upstream.Config
}

// Mapbox geocodes with the Mapbox Geocoding v5 API.
type Mapbox struct {
	token  string
	client *upstream.Client
	logger *slog.Logger
}

func NewMapbox(token string, opts Options) *Mapbox {
	cfg := opts.Client
	cfg.Name = "mapbox"
	cfg.BaseURL = opts.BaseURL
	if cfg.BaseURL == "" {
		cfg.BaseURL = mapboxBaseURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapbox{
		token:  token,
		client: upstream.New(cfg),
		logger: logger.With("provider", cfg.Name),
	}
}

func (m *Mapbox) Name() string {
	return m.client.Name()
}

func (m *Mapbox) Search(ctx context.Context, query string, limit int) ([]Place, error) {
	if m.token == "" {
		return nil, ErrNotConfigured
	}
	values := url.Values{}
	values.Set("access_token", m.token)
	values.Set("autocomplete", "true")
	values.Set("limit", strconv.Itoa(limit))

	features, err := m.fetch(ctx, url.PathEscape(query), values)
	if err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(features))
	for _, f := range features {
		if p, ok := f.place(); ok {
			places = append(places, p)
		}
	}
	return places, nil
}

func (m *Mapbox) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	if m.token == "" {
		return nil, ErrNotConfigured
	}
	values := url.Values{}
	values.Set("access_token", m.token)
	values.Set("limit", "1")

	coords := strconv.FormatFloat(lon, 'f', -1, 64) + "," + strconv.FormatFloat(lat, 'f', -1, 64)
	features, err := m.fetch(ctx, coords, values)
	if err != nil {
		return nil, err
	}
	for _, f := range features {
		if p, ok := f.place(); ok {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *Mapbox) fetch(ctx context.Context, segment string, values url.Values) ([]mapboxFeature, error) {
	body, err := m.client.Get(ctx, mapboxPlacesPath+segment+".json", values)
	if err != nil {
		return nil, err
	}
	var resp mapboxResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode mapbox response: %w", err)
	}
	return resp.Features, nil
}

// place converts a feature; center is [lon, lat].
func (f mapboxFeature) place() (Place, bool) {
	if len(f.Center) < 2 {
		return Place{}, false
	}
	return Place{
		PlaceName:   f.PlaceName,
		Lat:         f.Center[1],
		Lon:         f.Center[0],
		CountryCode: f.countryCode(),
	}, true
}

func (f mapboxFeature) countryCode() string {
	if strings.HasPrefix(f.ID, "country.") {
		return strings.ToUpper(f.Properties.ShortCode)
	}
	for _, c := range f.Context {
		if strings.HasPrefix(c.ID, "country.") {
			return strings.ToUpper(c.ShortCode)
		}
	}
	return ""
}
