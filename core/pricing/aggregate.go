package pricing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/smartpark/core/model"
)

// HoursPerDay is the number of hourly buckets in a complete day.
const HoursPerDay = 24

type slot struct{ day, hour int }

// Aggregate groups points by (weekday, hour) and averages their predicted
// values. Buckets are returned ordered by day then hour.
func Aggregate(points []model.ForecastPoint) ([]model.DayHourBucket, error) {
	if len(points) == 0 {
		return nil, ErrInsufficientData
	}
	groups := make(map[slot][]float64)
	for _, p := range points {
		if math.IsNaN(p.PredictedValue) || math.IsInf(p.PredictedValue, 0) {
			return nil, fmt.Errorf("%w at %s", ErrInvalidValue, p.Timestamp)
		}
		s := slot{day: model.DayOfWeek(p.Timestamp), hour: p.Timestamp.Hour()}
		groups[s] = append(groups[s], p.PredictedValue)
	}
	buckets := make([]model.DayHourBucket, 0, len(groups))
	for s, values := range groups {
		buckets = append(buckets, model.DayHourBucket{
			DayOfWeek:     s.day,
			DayName:       model.DayNames[s.day],
			Hour:          s.hour,
			MeanOccupancy: stat.Mean(values, nil),
		})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].DayOfWeek != buckets[j].DayOfWeek {
			return buckets[i].DayOfWeek < buckets[j].DayOfWeek
		}
		return buckets[i].Hour < buckets[j].Hour
	})
	return buckets, nil
}

// Slot identifies one (weekday, hour) pair.
type Slot struct {
	DayName string `json:"day"`
	Hour    int    `json:"hour"`
}

// MissingSlots lists the (weekday, hour) pairs absent from buckets, which
// happens when the forecast horizon is shorter than a week.
func MissingSlots(buckets []model.DayHourBucket) []Slot {
	var present [7][HoursPerDay]bool
	for _, b := range buckets {
		if b.DayOfWeek >= 0 && b.DayOfWeek < 7 && b.Hour >= 0 && b.Hour < HoursPerDay {
			present[b.DayOfWeek][b.Hour] = true
		}
	}
	var missing []Slot
	for d := 0; d < 7; d++ {
		for h := 0; h < HoursPerDay; h++ {
			if !present[d][h] {
				missing = append(missing, Slot{DayName: model.DayNames[d], Hour: h})
			}
		}
	}
	return missing
}
