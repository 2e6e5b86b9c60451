package prediction

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/smartpark/core/model"
)

// GeneratorConfig describes the synthetic occupancy pattern.
type GeneratorConfig struct {
	Days int `json:"days"`
	// Seed makes the noise reproducible.
	Seed uint64 `json:"seed"`
	// NoiseRatio is the standard deviation of the gaussian noise relative to
	// the expected occupancy.
	NoiseRatio float64 `json:"noise_ratio"`
	// BaseHourly is the weekday occupancy per hour of day.
	BaseHourly [24]float64 `json:"base_hourly_occupancy"`
	// DayMultipliers scales the profile per ISO weekday.
	DayMultipliers [7]float64 `json:"day_multipliers"`
	// WeekendShift delays the profile by a number of hours on the given days.
	WeekendShift map[int]int `json:"weekend_hourly_shift"`
}

// DefaultGeneratorConfig returns a commuter facility pattern with morning and
// early afternoon peaks, busier late in the week and quiet, later weekends.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Days:       30,
		Seed:       1,
		NoiseRatio: 0.1,
		BaseHourly: [24]float64{
			30, 20, 15, 10, 15, 25,
			45, 70, 95, 90, 85, 75,
			80, 95, 85, 80, 85, 80,
			70, 60, 50, 45, 40, 35,
		},
		DayMultipliers: [7]float64{1.0, 1.05, 1.1, 1.15, 1.2, 0.7, 0.5},
		WeekendShift:   map[int]int{5: 2, 6: 3},
	}
}

// Params returns the configuration as a generic map for model metadata.
func (c GeneratorConfig) Params() map[string]any {
	shift := make(map[string]any, len(c.WeekendShift))
	for d, h := range c.WeekendShift {
		if d >= 0 && d < len(model.DayNames) {
			shift[model.DayNames[d]] = h
		}
	}
	return map[string]any{
		"source":                "synthetic",
		"days":                  c.Days,
		"seed":                  c.Seed,
		"noise_ratio":           c.NoiseRatio,
		"base_hourly_occupancy": c.BaseHourly[:],
		"day_multipliers":       c.DayMultipliers[:],
		"weekend_hourly_shift":  shift,
	}
}

// Generator produces synthetic hourly occupancy history.
type Generator struct {
	cfg GeneratorConfig
	src rand.Source
}

// NewGenerator returns a Generator seeded from cfg.Seed.
func NewGenerator(cfg GeneratorConfig) *Generator {
	return &Generator{cfg: cfg, src: rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)}
}

// Generate returns cfg.Days days of hourly observations starting at midnight
// of start's day in start's location.
func (g *Generator) Generate(start time.Time) []Observation {
	day0 := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	obs := make([]Observation, 0, g.cfg.Days*24)
	for offset := 0; offset < g.cfg.Days; offset++ {
		date := day0.AddDate(0, 0, offset)
		dow := model.DayOfWeek(date)
		for hour := 0; hour < 24; hour++ {
			shifted := ((hour-g.cfg.WeekendShift[dow])%24 + 24) % 24
			expected := g.cfg.BaseHourly[shifted] * g.cfg.DayMultipliers[dow]
			value := expected
			if expected > 0 && g.cfg.NoiseRatio > 0 {
				noise := distuv.Normal{Mu: 0, Sigma: expected * g.cfg.NoiseRatio, Src: g.src}
				value += noise.Rand()
			}
			if value < 0 {
				value = 0
			}
			obs = append(obs, Observation{
				Timestamp: time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location()),
				Value:     value,
			})
		}
	}
	return obs
}

// StartOfWeek returns midnight of the Monday of t's week in t's location.
func StartOfWeek(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -model.DayOfWeek(d))
}
