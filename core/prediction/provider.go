package prediction

import (
	"context"
	"errors"

	"github.com/kilianp07/smartpark/core/model"
)

// ErrModelUnavailable is returned when no trained model exists.
var ErrModelUnavailable = errors.New("forecast model unavailable")

// Provider forecasts hourly occupancy.
type Provider interface {
	// Predict returns one point per hour for the next horizonHours hours,
	// starting at the current hour.
	Predict(ctx context.Context, horizonHours int) ([]model.ForecastPoint, error)
}

// Versioned is implemented by providers able to report the version of the
// data backing their forecasts. Forecasts with equal versions and horizons are
// interchangeable for aggregation purposes.
type Versioned interface {
	DataVersion(ctx context.Context) (string, error)
}
