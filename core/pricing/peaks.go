package pricing

import (
	"fmt"
	"sort"

	"github.com/kilianp07/smartpark/core/model"
)

// DefaultPeakCount is the number of peak hours reported per day.
const DefaultPeakCount = 5

// TopPeaks returns, for each day present in buckets, the k hours with the
// highest mean occupancy. Ties are broken by the lower hour first.
func TopPeaks(buckets []model.DayHourBucket, k int) (model.PeakReport, error) {
	if k <= 0 || k > HoursPerDay {
		return nil, fmt.Errorf("%w: %d (want 1-%d)", ErrInvalidK, k, HoursPerDay)
	}
	if len(buckets) == 0 {
		return nil, ErrInsufficientData
	}
	byDay := make(map[int][]model.DayHourBucket)
	for _, b := range buckets {
		if b.DayOfWeek < 0 || b.DayOfWeek >= len(model.DayNames) {
			return nil, fmt.Errorf("%w: day of week %d out of range", ErrIncompleteDay, b.DayOfWeek)
		}
		byDay[b.DayOfWeek] = append(byDay[b.DayOfWeek], b)
	}
	report := make(model.PeakReport, len(byDay))
	for d, day := range byDay {
		sorted := make([]model.DayHourBucket, len(day))
		copy(sorted, day)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].MeanOccupancy != sorted[j].MeanOccupancy {
				return sorted[i].MeanOccupancy > sorted[j].MeanOccupancy
			}
			return sorted[i].Hour < sorted[j].Hour
		})
		n := k
		if n > len(sorted) {
			n = len(sorted)
		}
		peaks := make([]model.Peak, n)
		for i := 0; i < n; i++ {
			peaks[i] = model.Peak{Hour: sorted[i].Hour, MeanOccupancy: sorted[i].MeanOccupancy}
		}
		report[model.DayNames[d]] = peaks
	}
	return report, nil
}
