package weather

import (
	"context"
)

// ProbeResult reports whether a forecast tier answered for this credential.
// Status and Err are kept for diagnostics when the tier is unavailable.
type ProbeResult[T any] struct {
	Available bool
	Payload   *T
	Status    int
	Err       error
}

// Provider abstracts the upstream weather source. Probes are live requests:
// the same credential may be entitled to a tier on one call and not the next.
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, q Query) (*CurrentConditions, error)

	// ProbePrimary asks the richer endpoint with native hourly/daily arrays.
	ProbePrimary(ctx context.Context, lat, lon float64) ProbeResult[Forecast]

	// ProbeSecondary asks the coarser 3-hour list endpoint.
	ProbeSecondary(ctx context.Context, lat, lon float64) ProbeResult[ForecastList]
}
