package weather

import "errors"

var (
	// ErrInputRejected means the request named neither coordinates nor a city.
	ErrInputRejected = errors.New("provide lat/lon or city")

	// ErrNormalizationRejected means the current-conditions payload lacked
	// its temperature/humidity block.
	ErrNormalizationRejected = errors.New("invalid weather payload")

	// ErrNotConfigured means the provider credential is missing.
	ErrNotConfigured = errors.New("missing weather API key")
)
