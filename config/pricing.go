package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/pricing"
)

// PricingConfig holds the tariff and the forecast window.
type PricingConfig struct {
	BasePrice float64 `json:"base_price"`
	// TierMultipliers is keyed by tier name (low, medium, high, premium).
	TierMultipliers map[string]float64 `json:"tier_multipliers"`
	Rounding        string             `json:"rounding"`
	// File loads the tariff from a standalone YAML or JSON file instead.
	File         string `json:"file"`
	HorizonHours int    `json:"horizon_hours"`
	Timezone     string `json:"timezone"`
	PeakCount    int    `json:"peak_count"`
}

// SetDefaults applies the one week horizon, UTC and five peaks.
func (c *PricingConfig) SetDefaults() {
	if c.HorizonHours == 0 {
		c.HorizonHours = pricing.DefaultHorizonHours
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.PeakCount == 0 {
		c.PeakCount = pricing.DefaultPeakCount
	}
}

// Validate checks the window, the zone and the tariff.
func (c PricingConfig) Validate() error {
	if c.HorizonHours < pricing.DefaultHorizonHours {
		return fmt.Errorf("horizon_hours must cover a full week (%d), got %d", pricing.DefaultHorizonHours, c.HorizonHours)
	}
	if c.PeakCount <= 0 || c.PeakCount > pricing.HoursPerDay {
		return fmt.Errorf("peak_count must be within 1..%d, got %d", pricing.HoursPerDay, c.PeakCount)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.File != "" {
		if c.BasePrice != 0 || len(c.TierMultipliers) > 0 {
			return errors.New("file and inline tariff are mutually exclusive")
		}
		return nil
	}
	_, err := c.Tariff()
	return err
}

// Location loads the facility time zone.
func (c PricingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Tariff returns the validated pricing table, loading File when set. An
// empty inline table yields the reference tariff.
func (c PricingConfig) Tariff() (model.PricingConfig, error) {
	if c.File != "" {
		return pricing.LoadConfig(c.File)
	}
	out := model.PricingConfig{
		BasePrice: c.BasePrice,
		Rounding:  model.RoundingMode(c.Rounding),
	}
	if len(c.TierMultipliers) > 0 {
		out.TierMultipliers = make(map[model.PricingTier]float64, len(c.TierMultipliers))
		for name, m := range c.TierMultipliers {
			t, err := model.ParseTier(name)
			if err != nil {
				return model.PricingConfig{}, err
			}
			out.TierMultipliers[t] = m
		}
	}
	out.SetDefaults()
	if err := out.Validate(); err != nil {
		return model.PricingConfig{}, err
	}
	return out, nil
}
