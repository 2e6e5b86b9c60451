package prediction

import (
	"context"
	"sync"

	"github.com/kilianp07/smartpark/core/model"
)

// MockProvider returns a fixed set of points.
type MockProvider struct {
	Points  []model.ForecastPoint
	Err     error
	Version string
	Calls   int

	mu sync.Mutex
}

// Predict returns a copy of at most horizonHours configured points, or Err.
func (m *MockProvider) Predict(_ context.Context, horizonHours int) ([]model.ForecastPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	n := len(m.Points)
	if horizonHours < n {
		n = horizonHours
	}
	if n <= 0 {
		return nil, nil
	}
	cp := make([]model.ForecastPoint, n)
	copy(cp, m.Points[:n])
	return cp, nil
}

// DataVersion returns the configured version.
func (m *MockProvider) DataVersion(context.Context) (string, error) {
	return m.Version, nil
}
