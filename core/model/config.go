package model

import (
	"errors"
	"fmt"
)

// RoundingMode selects how prices are rounded to cents.
type RoundingMode string

const (
	// RoundHalfUp rounds halves away from zero (2.125 -> 2.13).
	RoundHalfUp RoundingMode = "half_up"
	// RoundHalfEven rounds halves to the nearest even cent (2.125 -> 2.12).
	RoundHalfEven RoundingMode = "half_even"
)

// PricingConfig defines the base hourly rate and the per-tier multipliers.
type PricingConfig struct {
	BasePrice       float64                 `json:"base_price" yaml:"base_price"`
	TierMultipliers map[PricingTier]float64 `json:"tier_multipliers" yaml:"tier_multipliers"`
	Rounding        RoundingMode            `json:"rounding" yaml:"rounding"`
}

// DefaultPricingConfig returns the reference table: 2.00 base price and
// multipliers 1.0 / 1.25 / 1.5 / 2.0.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		BasePrice: 2.00,
		TierMultipliers: map[PricingTier]float64{
			TierLow:     1.0,
			TierMedium:  1.25,
			TierHigh:    1.5,
			TierPremium: 2.0,
		},
		Rounding: RoundHalfUp,
	}
}

// SetDefaults fills in the rounding mode and, when no table is given, the
// reference multipliers.
func (c *PricingConfig) SetDefaults() {
	if c.Rounding == "" {
		c.Rounding = RoundHalfUp
	}
	if c.BasePrice == 0 && len(c.TierMultipliers) == 0 {
		*c = DefaultPricingConfig()
	}
}

// Validate checks that the base price is positive and that multipliers are
// positive and never decrease from one tier to the next. Missing tiers are
// allowed here and reported when a schedule needs them.
func (c PricingConfig) Validate() error {
	if c.BasePrice <= 0 {
		return errors.New("base_price must be positive")
	}
	switch c.Rounding {
	case RoundHalfUp, RoundHalfEven, "":
	default:
		return fmt.Errorf("unknown rounding mode %q", c.Rounding)
	}
	prev, prevTier, seen := 0.0, PricingTier(0), false
	for _, t := range Tiers {
		m, ok := c.TierMultipliers[t]
		if !ok {
			continue
		}
		if m <= 0 {
			return fmt.Errorf("multiplier for %s must be positive", t)
		}
		if seen && m < prev {
			return fmt.Errorf("multiplier for %s (%.2f) is lower than %s (%.2f)", t, m, prevTier, prev)
		}
		prev, prevTier, seen = m, t, true
	}
	return nil
}
