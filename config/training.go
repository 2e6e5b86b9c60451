package config

import (
	"errors"

	"github.com/kilianp07/smartpark/core/prediction"
)

// TrainingConfig drives the synthetic history used by the train command.
type TrainingConfig struct {
	Days       int     `json:"days"`
	Seed       uint64  `json:"seed"`
	NoiseRatio float64 `json:"noise_ratio"`
}

// SetDefaults copies unset values from the default generator.
func (c *TrainingConfig) SetDefaults() {
	def := prediction.DefaultGeneratorConfig()
	if c.Days == 0 {
		c.Days = def.Days
	}
	if c.Seed == 0 {
		c.Seed = def.Seed
	}
	if c.NoiseRatio == 0 {
		c.NoiseRatio = def.NoiseRatio
	}
}

// Validate requires at least one week of history.
func (c TrainingConfig) Validate() error {
	if c.Days < 7 {
		return errors.New("days must be at least 7")
	}
	if c.NoiseRatio < 0 {
		return errors.New("noise_ratio must not be negative")
	}
	return nil
}

// Generator returns the generator configuration.
func (c TrainingConfig) Generator() prediction.GeneratorConfig {
	g := prediction.DefaultGeneratorConfig()
	g.Days = c.Days
	g.Seed = c.Seed
	g.NoiseRatio = c.NoiseRatio
	return g
}
