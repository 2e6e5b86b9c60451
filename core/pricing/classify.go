package pricing

import (
	"fmt"
	"sort"

	"github.com/kilianp07/smartpark/core/model"
)

// Classify assigns a pricing tier to every hour of every day present in
// buckets. Each day must hold exactly one bucket for each hour 0-23; a single
// incomplete day fails the whole call.
//
// Within a day, hours are ranked by mean occupancy using the percentile rank
// with ties averaged, so equal occupancies always share a tier. Percentiles
// map onto tiers with right-closed quartile bins.
func Classify(buckets []model.DayHourBucket) (model.Classification, error) {
	if len(buckets) == 0 {
		return nil, ErrInsufficientData
	}
	byDay := make(map[int][]model.DayHourBucket)
	for _, b := range buckets {
		byDay[b.DayOfWeek] = append(byDay[b.DayOfWeek], b)
	}
	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	out := make(model.Classification, len(days))
	for _, d := range days {
		if d < 0 || d >= len(model.DayNames) {
			return nil, fmt.Errorf("%w: day of week %d out of range", ErrIncompleteDay, d)
		}
		hours, err := classifyDay(d, byDay[d])
		if err != nil {
			return nil, err
		}
		out[model.DayNames[d]] = hours
	}
	return out, nil
}

func classifyDay(day int, buckets []model.DayHourBucket) ([]model.ClassifiedHour, error) {
	name := model.DayNames[day]
	var seen [HoursPerDay]bool
	distinct := 0
	for _, b := range buckets {
		if b.Hour < 0 || b.Hour >= HoursPerDay {
			return nil, &DayError{Day: name, Hours: distinct}
		}
		if !seen[b.Hour] {
			seen[b.Hour] = true
			distinct++
		}
	}
	if distinct != HoursPerDay || len(buckets) != HoursPerDay {
		return nil, &DayError{Day: name, Hours: distinct}
	}

	sorted := make([]model.DayHourBucket, len(buckets))
	copy(sorted, buckets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Hour < sorted[j].Hour })

	values := make([]float64, len(sorted))
	for i, b := range sorted {
		values[i] = b.MeanOccupancy
	}
	ranks := doubledRanks(values)
	n := len(values)
	out := make([]model.ClassifiedHour, n)
	for i, b := range sorted {
		out[i] = model.ClassifiedHour{
			Hour:          b.Hour,
			Tier:          tierForRank(ranks[i], n),
			MeanOccupancy: b.MeanOccupancy,
			Percentile:    float64(ranks[i]) / float64(2*n),
		}
	}
	return out, nil
}

// doubledRanks returns twice the average rank of each value: 2*less + equal + 1.
// Keeping the doubled form avoids fractions when ties share a half rank.
func doubledRanks(values []float64) []int {
	ranks := make([]int, len(values))
	for i, x := range values {
		less, equal := 0, 0
		for _, v := range values {
			switch {
			case v < x:
				less++
			case v == x:
				equal++
			}
		}
		ranks[i] = 2*less + equal + 1
	}
	return ranks
}

// tierForRank applies the bins (0,.25] (.25,.5] (.5,.75] (.75,1] to the
// percentile r2/(2n) using integer comparisons.
func tierForRank(r2, n int) model.PricingTier {
	switch {
	case 2*r2 <= n:
		return model.TierLow
	case 2*r2 <= 2*n:
		return model.TierMedium
	case 2*r2 <= 3*n:
		return model.TierHigh
	default:
		return model.TierPremium
	}
}
