package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/i474232898/weather-dashboard/internal/logging"
	"github.com/i474232898/weather-dashboard/internal/upstream"
)

type fakeProvider struct {
	current    *CurrentConditions
	currentErr error
	primary    ProbeResult[Forecast]
	secondary  ProbeResult[ForecastList]

	gotQuery     Query
	primaryAt    [][2]float64
	secondaryAt  [][2]float64
	currentCalls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchCurrent(_ context.Context, q Query) (*CurrentConditions, error) {
	f.currentCalls++
	f.gotQuery = q
	return f.current, f.currentErr
}

func (f *fakeProvider) ProbePrimary(_ context.Context, lat, lon float64) ProbeResult[Forecast] {
	f.primaryAt = append(f.primaryAt, [2]float64{lat, lon})
	return f.primary
}

func (f *fakeProvider) ProbeSecondary(_ context.Context, lat, lon float64) ProbeResult[ForecastList] {
	f.secondaryAt = append(f.secondaryAt, [2]float64{lat, lon})
	return f.secondary
}

func validCurrent() *CurrentConditions {
	return &CurrentConditions{
		Name:  "Berlin",
		Coord: &Coord{Lat: f64(52.5), Lon: f64(13.4)},
		Main:  &MainBlock{Temp: f64(12), Humidity: f64(80)},
	}
}

func TestServiceRejectsQueryWithoutLocation(t *testing.T) {
	p := &fakeProvider{current: validCurrent()}
	svc := NewService(p, logging.Discard())

	for _, q := range []Query{{}, {Lat: f64(1)}, {Lon: f64(1)}, {LocationName: "x"}} {
		_, err := svc.Get(context.Background(), q)
		if !errors.Is(err, ErrInputRejected) {
			t.Fatalf("expected ErrInputRejected for %+v, got %v", q, err)
		}
	}
	if p.currentCalls != 0 {
		t.Fatalf("no upstream call expected, got %d", p.currentCalls)
	}
}

func TestServiceUsesPrimaryTierWhenAvailable(t *testing.T) {
	p := &fakeProvider{
		current: validCurrent(),
		primary: ProbeResult[Forecast]{Available: true, Payload: &Forecast{
			Hourly: []HourlySample{{Dt: i64(1)}},
			Daily:  []DailySample{{}, {Dt: i64(2)}},
		}},
	}
	svc := NewService(p, logging.Discard())

	got, err := svc.Get(context.Background(), Query{Lat: f64(1), Lon: f64(2), LocationName: "Home"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.HourlyForecast) != 1 || len(got.DailyForecast) != 1 {
		t.Fatalf("unexpected forecast sizes %d/%d", len(got.HourlyForecast), len(got.DailyForecast))
	}
	if got.LocationName != "Home" {
		t.Fatalf("expected fallback name, got %q", got.LocationName)
	}
	if len(p.secondaryAt) != 0 {
		t.Fatal("secondary tier must not be probed when primary answers")
	}
	if p.primaryAt[0] != [2]float64{1, 2} {
		t.Fatalf("primary probed at %v, want request coordinates", p.primaryAt[0])
	}
}

func TestServiceFallsBackToSecondaryTier(t *testing.T) {
	p := &fakeProvider{
		current: validCurrent(),
		primary: ProbeResult[Forecast]{Status: 401},
		secondary: ProbeResult[ForecastList]{Available: true, Payload: &ForecastList{List: []ListSample{
			{Dt: 1714564800, Main: &MainBlock{Temp: f64(10)}}, // 2024-05-01 12:00 UTC
		}}},
	}
	svc := NewService(p, logging.Discard())

	got, err := svc.Get(context.Background(), Query{City: "Berlin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.HourlyForecast) != 1 {
		t.Fatalf("expected reshaped hourly data, got %d", len(got.HourlyForecast))
	}
	// The only daily entry is index 0 ("today") and is skipped.
	if len(got.DailyForecast) != 0 {
		t.Fatalf("expected no daily data, got %d", len(got.DailyForecast))
	}
	if p.secondaryAt[0] != [2]float64{52.5, 13.4} {
		t.Fatalf("secondary probed at %v, want provider coordinates", p.secondaryAt[0])
	}
	if p.gotQuery.City != "Berlin" {
		t.Fatalf("current fetched with %+v", p.gotQuery)
	}
}

func TestServiceDegradesWhenBothTiersUnavailable(t *testing.T) {
	p := &fakeProvider{
		current:   validCurrent(),
		primary:   ProbeResult[Forecast]{Status: 401},
		secondary: ProbeResult[ForecastList]{Err: errors.New("dial tcp: refused")},
	}
	svc := NewService(p, logging.Discard())

	got, err := svc.Get(context.Background(), Query{City: "Berlin"})
	if err != nil {
		t.Fatalf("degraded result must not be an error: %v", err)
	}
	if got.HourlyForecast == nil || got.DailyForecast == nil {
		t.Fatal("forecast arrays must be empty, not nil")
	}
	if len(got.HourlyForecast) != 0 || len(got.DailyForecast) != 0 {
		t.Fatal("expected empty forecast arrays")
	}
}

func TestServiceSecondaryWithoutListDegrades(t *testing.T) {
	p := &fakeProvider{
		current:   validCurrent(),
		secondary: ProbeResult[ForecastList]{Available: true, Payload: &ForecastList{}},
	}
	svc := NewService(p, logging.Discard())

	got, err := svc.Get(context.Background(), Query{City: "Berlin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.HourlyForecast) != 0 {
		t.Fatal("expected current conditions only")
	}
}

func TestServiceSurfacesCurrentFetchFailure(t *testing.T) {
	upstreamErr := errors.New("status 502")
	p := &fakeProvider{currentErr: upstreamErr}
	svc := NewService(p, logging.Discard())

	_, err := svc.Get(context.Background(), Query{City: "Nowhere"})
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	if len(p.primaryAt) != 0 {
		t.Fatal("forecast must not be probed after a failed current fetch")
	}
}

func TestServiceSkipsForecastWithoutCoordinates(t *testing.T) {
	current := validCurrent()
	current.Coord = nil
	p := &fakeProvider{current: current}
	svc := NewService(p, logging.Discard())

	got, err := svc.Get(context.Background(), Query{City: "Berlin"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.primaryAt) != 0 || len(got.HourlyForecast) != 0 {
		t.Fatal("expected no forecast probe without coordinates")
	}
}

func TestServiceRejectsInvalidCurrentPayload(t *testing.T) {
	p := &fakeProvider{current: &CurrentConditions{Name: "X"}}
	svc := NewService(p, logging.Discard())

	_, err := svc.Get(context.Background(), Query{City: "X"})
	if !errors.Is(err, ErrNormalizationRejected) {
		t.Fatalf("expected ErrNormalizationRejected, got %v", err)
	}
}

func TestServiceLogsQueryAndStatusOnCurrentFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	p := &fakeProvider{currentErr: &upstream.StatusError{Provider: "fake", Status: 404}}
	svc := NewService(p, logger)
	if _, err := svc.Get(context.Background(), Query{Lat: f64(48.1), Lon: f64(11.6)}); err == nil {
		t.Fatal("expected error")
	}

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["lat"] != 48.1 || entry["lon"] != 11.6 || entry["status"] != float64(404) {
		t.Fatalf("log line lacks query or status: %v", entry)
	}
	if _, ok := entry["city"]; ok {
		t.Fatalf("coordinate request should not log a city: %v", entry)
	}
}
