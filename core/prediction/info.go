package prediction

import (
	"context"
	"time"
)

// ModelInfo summarises the model backing a provider.
type ModelInfo struct {
	ID           string         `json:"id"`
	FittedAt     time.Time      `json:"fitted_at"`
	Location     string         `json:"location"`
	Observations int            `json:"observations"`
	Params       map[string]any `json:"params,omitempty"`
}

// Describer is implemented by providers able to report their model.
type Describer interface {
	Describe(ctx context.Context) (ModelInfo, error)
}

// Info returns the model metadata without its profiles.
func (m Model) Info() ModelInfo {
	return ModelInfo{
		ID:           m.ID,
		FittedAt:     m.FittedAt,
		Location:     m.Location,
		Observations: m.Observations,
		Params:       m.Params,
	}
}
