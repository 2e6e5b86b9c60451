package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/smartpark/core/model"
)

// SeasonalProvider forecasts occupancy from the latest model in a store.
type SeasonalProvider struct {
	store ModelStore
	now   func() time.Time
}

// NewSeasonalProvider returns a provider backed by store. A nil clock uses
// time.Now.
func NewSeasonalProvider(store ModelStore, now func() time.Time) *SeasonalProvider {
	if now == nil {
		now = time.Now
	}
	return &SeasonalProvider{store: store, now: now}
}

// Predict projects the latest model over the next horizonHours hours.
func (p *SeasonalProvider) Predict(ctx context.Context, horizonHours int) ([]model.ForecastPoint, error) {
	if horizonHours <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", horizonHours)
	}
	m, err := p.latest(ctx)
	if err != nil {
		return nil, err
	}
	return m.Forecast(p.now(), horizonHours)
}

// DataVersion returns the ID of the latest model.
func (p *SeasonalProvider) DataVersion(ctx context.Context) (string, error) {
	m, err := p.latest(ctx)
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (p *SeasonalProvider) latest(ctx context.Context) (Model, error) {
	m, ok, err := p.store.LatestModel(ctx)
	if err != nil {
		return Model{}, fmt.Errorf("load model: %w", err)
	}
	if !ok {
		return Model{}, ErrModelUnavailable
	}
	return m, nil
}

// Describe reports metadata of the latest model.
func (p *SeasonalProvider) Describe(ctx context.Context) (ModelInfo, error) {
	m, err := p.latest(ctx)
	if err != nil {
		return ModelInfo{}, err
	}
	return m.Info(), nil
}
