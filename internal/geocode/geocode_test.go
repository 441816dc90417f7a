package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/upstream"
)

const searchBody = `{
	"type": "FeatureCollection",
	"features": [
		{"id": "place.123", "place_name": "Paris, Île-de-France, France", "center": [2.35183, 48.85658],
		 "context": [{"id": "region.1", "short_code": "FR-IDF"}, {"id": "country.8", "short_code": "fr"}]},
		{"id": "country.8", "place_name": "France", "center": [2.0, 46.0], "properties": {"short_code": "fr"}},
		{"id": "broken.1", "place_name": "No centre"}
	]
}`

func newTestMapbox(token, baseURL string) *Mapbox {
	return NewMapbox(token, Options{
		BaseURL: baseURL,
		Client:  upstream.Config{Timeout: time.Second, Logger: logging.Discard()},
	})
}

func TestMapboxSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/geocoding/v5/mapbox.places/Paris France.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("access_token") != "tok" || r.URL.Query().Get("limit") != "3" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	places, err := newTestMapbox("tok", srv.URL).Search(context.Background(), "Paris France", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 usable places, got %d", len(places))
	}
	want := Place{PlaceName: "Paris, Île-de-France, France", Lat: 48.85658, Lon: 2.35183, CountryCode: "FR"}
	if places[0] != want {
		t.Fatalf("got %+v, want %+v", places[0], want)
	}
	if places[1].CountryCode != "FR" {
		t.Fatalf("country feature should use its own short code, got %q", places[1].CountryCode)
	}
}

func TestMapboxReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/geocoding/v5/mapbox.places/2.3522,48.8566.json":
			w.Write([]byte(searchBody))
		default:
			w.Write([]byte(`{"features": []}`))
		}
	}))
	defer srv.Close()

	m := newTestMapbox("tok", srv.URL)
	place, err := m.Reverse(context.Background(), 48.8566, 2.3522)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if place == nil || place.PlaceName != "Paris, Île-de-France, France" {
		t.Fatalf("unexpected place %+v", place)
	}

	place, err = m.Reverse(context.Background(), 0, -160)
	if err != nil || place != nil {
		t.Fatalf("expected no place, got %+v %v", place, err)
	}
}

func TestMapboxNotConfigured(t *testing.T) {
	m := newTestMapbox("", "http://127.0.0.1:1")
	if _, err := m.Search(context.Background(), "x", 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := m.Reverse(context.Background(), 1, 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestGoogleNotConfigured(t *testing.T) {
	g := NewGoogle("", Options{Client: upstream.Config{Logger: logging.Discard()}})
	if _, err := g.Search(context.Background(), "x", 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := g.Reverse(context.Background(), 1, 1); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

type stubGeocoder struct {
	places  []Place
	reverse *Place
	err     error
	limit   int
}

func (s *stubGeocoder) Name() string { return "stub" }

func (s *stubGeocoder) Search(_ context.Context, _ string, limit int) ([]Place, error) {
	s.limit = limit
	return s.places, s.err
}

func (s *stubGeocoder) Reverse(context.Context, float64, float64) (*Place, error) {
	return s.reverse, s.err
}

func TestServiceSearchClampsLimit(t *testing.T) {
	stub := &stubGeocoder{}
	svc := NewService(stub, logging.Discard())

	for in, want := range map[int]int{0: DefaultLimit, -3: DefaultLimit, 7: 7, 50: MaxLimit} {
		if _, err := svc.Search(context.Background(), "x", in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stub.limit != want {
			t.Fatalf("limit %d: provider saw %d, want %d", in, stub.limit, want)
		}
	}
}

func TestServicePlaceNameFallbacks(t *testing.T) {
	ctx := context.Background()

	name, err := NewService(&stubGeocoder{reverse: &Place{PlaceName: "Oslo, Norway"}}, logging.Discard()).PlaceName(ctx, 59.91, 10.75)
	if err != nil || name != "Oslo, Norway" {
		t.Fatalf("got %q %v", name, err)
	}

	name, err = NewService(&stubGeocoder{}, logging.Discard()).PlaceName(ctx, 12.345678, -98.7)
	if err != nil || name != "Location (12.3457, -98.7000)" {
		t.Fatalf("got %q %v", name, err)
	}

	upstreamErr := &upstream.StatusError{Provider: "stub", Status: http.StatusBadGateway}
	name, err = NewService(&stubGeocoder{err: upstreamErr}, logging.Discard()).PlaceName(ctx, 1, 2)
	if err != nil || name != "Location (1.0000, 2.0000)" {
		t.Fatalf("got %q %v", name, err)
	}

	if _, err := NewService(&stubGeocoder{err: ErrNotConfigured}, logging.Discard()).PlaceName(ctx, 1, 2); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
