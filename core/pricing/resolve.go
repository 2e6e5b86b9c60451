package pricing

import (
	"fmt"
	"time"

	"github.com/kilianp07/smartpark/core/model"
)

// ResolveCurrent returns the schedule entry in effect at instant at. The
// weekday and hour are taken in at's location.
func ResolveCurrent(schedule model.WeeklySchedule, at time.Time) (model.CurrentTier, error) {
	day := model.DayName(at)
	hour := at.Hour()
	for _, e := range schedule[day] {
		if e.Hour == hour {
			return model.CurrentTier{Day: day, ScheduleEntry: e}, nil
		}
	}
	return model.CurrentTier{}, fmt.Errorf("%w: %s %d:00", ErrNoMatchingEntry, day, hour)
}
