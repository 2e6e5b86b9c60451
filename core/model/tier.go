package model

import (
	"fmt"
	"strings"
)

// PricingTier is an ordered demand class. Higher tiers carry higher price
// multipliers.
type PricingTier int

const (
	TierLow PricingTier = iota
	TierMedium
	TierHigh
	TierPremium
)

// Tiers lists every tier in ascending order.
var Tiers = []PricingTier{TierLow, TierMedium, TierHigh, TierPremium}

// String returns the display name of the tier.
func (t PricingTier) String() string {
	switch t {
	case TierLow:
		return "Low"
	case TierMedium:
		return "Medium"
	case TierHigh:
		return "High"
	case TierPremium:
		return "Premium"
	default:
		return "unknown"
	}
}

// ParseTier converts a tier name (case insensitive) to a PricingTier.
func ParseTier(s string) (PricingTier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown pricing tier %q", s)
}

// MarshalText encodes the tier by name so JSON payloads and map keys stay readable.
func (t PricingTier) MarshalText() ([]byte, error) {
	if t < TierLow || t > TierPremium {
		return nil, fmt.Errorf("invalid pricing tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name.
func (t *PricingTier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
