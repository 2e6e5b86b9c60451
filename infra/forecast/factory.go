package forecast

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/smartpark/core/factory"
	"github.com/kilianp07/smartpark/core/prediction"
	"github.com/kilianp07/smartpark/infra/store"
)

// SeasonalConfig points the seasonal provider at its model database.
type SeasonalConfig struct {
	Path string `json:"path"`
}

// MockConfig configures the synthetic demo provider.
type MockConfig struct {
	Seed     uint64 `json:"seed"`
	Timezone string `json:"timezone"`
	// Unavailable makes every call fail with ErrModelUnavailable.
	Unavailable bool `json:"unavailable"`
}

// mockHorizon is the number of synthetic points served by the mock provider.
const mockHorizon = 4 * 7 * 24

// init registers built-in forecast providers.
func init() {
	_ = prediction.RegisterProvider("seasonal", func(conf map[string]any) (prediction.Provider, error) {
		var c SeasonalConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, errors.New("seasonal provider requires a store path")
		}
		s, err := store.NewSQLiteStore(c.Path)
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
		return prediction.NewSeasonalProvider(s, nil), nil
	})

	_ = prediction.RegisterProvider("http", func(conf map[string]any) (prediction.Provider, error) {
		var c HTTPConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		p, err := NewHTTPProvider(c)
		if err != nil {
			return nil, err
		}
		return p, nil
	})

	_ = prediction.RegisterProvider("mock", func(conf map[string]any) (prediction.Provider, error) {
		var c MockConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMockProvider(c, time.Now())
	})
}

// NewMockProvider returns a MockProvider serving a forecast fitted on
// synthetic history generated with c.Seed, starting at the hour containing now.
func NewMockProvider(c MockConfig, now time.Time) (*prediction.MockProvider, error) {
	if c.Unavailable {
		return &prediction.MockProvider{Err: prediction.ErrModelUnavailable}, nil
	}
	loc := time.UTC
	if c.Timezone != "" {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("mock timezone: %w", err)
		}
		loc = l
	}
	gcfg := prediction.DefaultGeneratorConfig()
	if c.Seed != 0 {
		gcfg.Seed = c.Seed
	}
	start := prediction.StartOfWeek(now.In(loc))
	m, err := prediction.Fit(prediction.NewGenerator(gcfg).Generate(start), loc, now)
	if err != nil {
		return nil, err
	}
	points, err := m.Forecast(now, mockHorizon)
	if err != nil {
		return nil, err
	}
	return &prediction.MockProvider{
		Points:  points,
		Version: fmt.Sprintf("mock-seed-%d", gcfg.Seed),
	}, nil
}
