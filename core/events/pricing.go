package events

import (
	"time"

	"github.com/kilianp07/smartpark/core/model"
)

// ScheduleEvent is published each time a weekly schedule is computed.
type ScheduleEvent struct {
	GenerationID string
	DataVersion  string
	CacheHit     bool
	Schedule     model.WeeklySchedule
	Time         time.Time
}

// TierChangeEvent is published when the entry in effect changes tier or
// price. Previous is nil for the first resolution after start-up.
type TierChangeEvent struct {
	Previous *model.CurrentTier
	Current  model.CurrentTier
	Time     time.Time
}
