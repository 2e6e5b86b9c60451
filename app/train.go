package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/smartpark/core/prediction"
)

// TrainingStore keeps the history and the fitted models.
type TrainingStore interface {
	prediction.ModelStore
	prediction.ObservationStore
}

// Train appends obs to the stored history, fits a model on the whole history
// in loc and saves it as the latest model.
func Train(ctx context.Context, st TrainingStore, obs []prediction.Observation, loc *time.Location, params map[string]any, now time.Time) (prediction.Model, error) {
	if err := st.AppendObservations(ctx, obs); err != nil {
		return prediction.Model{}, fmt.Errorf("store observations: %w", err)
	}
	history, err := st.Observations(ctx)
	if err != nil {
		return prediction.Model{}, fmt.Errorf("load observations: %w", err)
	}
	m, err := prediction.Fit(history, loc, now)
	if err != nil {
		return prediction.Model{}, fmt.Errorf("fit model: %w", err)
	}
	m.Params = params
	if err := st.SaveModel(ctx, m); err != nil {
		return prediction.Model{}, fmt.Errorf("save model: %w", err)
	}
	return m, nil
}
