package pricing

import (
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/smartpark/core/model"
)

// OccupancyPrecision is the number of decimals kept for predicted occupancy
// in schedule entries.
const OccupancyPrecision = 1

// BuildSchedule prices every classified hour with
// base_price * tier_multiplier rounded to cents. Entries of each day are
// sorted by hour regardless of input order.
func BuildSchedule(classified model.Classification, cfg model.PricingConfig) (model.WeeklySchedule, error) {
	mode := cfg.Rounding
	if mode == "" {
		mode = model.RoundHalfUp
	}
	schedule := make(model.WeeklySchedule, len(classified))
	for _, day := range model.DayNames {
		hours, ok := classified[day]
		if !ok {
			continue
		}
		entries := make([]model.ScheduleEntry, 0, len(hours))
		for _, h := range hours {
			price, err := Price(h.Tier, cfg.BasePrice, cfg.TierMultipliers, mode)
			if err != nil {
				return nil, fmt.Errorf("%s %d:00: %w", day, h.Hour, err)
			}
			entries = append(entries, model.ScheduleEntry{
				Hour:               h.Hour,
				Tier:               h.Tier,
				Price:              price,
				PredictedOccupancy: Round(h.MeanOccupancy, OccupancyPrecision, mode),
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Hour < entries[j].Hour })
		schedule[day] = entries
	}
	for day := range classified {
		if _, ok := schedule[day]; !ok {
			return nil, fmt.Errorf("unknown day name %q in classification", day)
		}
	}
	return schedule, nil
}

// Price returns the rounded price for a tier.
func Price(tier model.PricingTier, base float64, multipliers map[model.PricingTier]float64, mode model.RoundingMode) (float64, error) {
	m, ok := multipliers[tier]
	if !ok {
		return 0, fmt.Errorf("%w: no multiplier for %s", ErrUnknownTier, tier)
	}
	return Round(base*m, 2, mode), nil
}

// Round rounds x to the given number of decimal places. Products such as
// 2.675*100 are first snapped to 1e-6 so binary representation noise does not
// push an exact half below the rounding point.
func Round(x float64, places int, mode model.RoundingMode) float64 {
	scale := math.Pow10(places)
	scaled := math.Round(x*scale*1e6) / 1e6
	if mode == model.RoundHalfEven {
		return math.RoundToEven(scaled) / scale
	}
	return math.Round(scaled) / scale
}
