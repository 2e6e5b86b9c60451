package mqtt

import (
	"time"

	"github.com/kilianp07/smartpark/core/model"
)

// CurrentMessage is the payload of the {prefix}/current topic.
type CurrentMessage struct {
	Day                string  `json:"day"`
	Hour               int     `json:"hour"`
	HourFormatted      string  `json:"hour_formatted"`
	Tier               string  `json:"pricing_tier"`
	Price              float64 `json:"price"`
	PredictedOccupancy float64 `json:"predicted_occupancy"`
	Timestamp          int64   `json:"timestamp"`
}

// NewCurrentMessage converts a resolved tier into its wire form.
func NewCurrentMessage(cur model.CurrentTier, at time.Time) CurrentMessage {
	return CurrentMessage{
		Day:                cur.Day,
		Hour:               cur.Hour,
		HourFormatted:      cur.HourFormatted(),
		Tier:               cur.Tier.String(),
		Price:              cur.Price,
		PredictedOccupancy: cur.PredictedOccupancy,
		Timestamp:          at.UnixMilli(),
	}
}

// DayMessage is the payload of the {prefix}/schedule/{day} topics.
type DayMessage struct {
	Day       string                `json:"day"`
	Entries   []model.ScheduleEntry `json:"entries"`
	Timestamp int64                 `json:"timestamp"`
}

// NewDayMessage wraps the entries of one day.
func NewDayMessage(day string, entries []model.ScheduleEntry, at time.Time) DayMessage {
	return DayMessage{Day: day, Entries: entries, Timestamp: at.UnixMilli()}
}
