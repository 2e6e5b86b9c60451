package model

import (
	"encoding/json"
	"fmt"
)

// ScheduleEntry is the price applied during one hour of a day.
type ScheduleEntry struct {
	Hour               int         `json:"hour"`
	Tier               PricingTier `json:"tier"`
	Price              float64     `json:"price"`
	PredictedOccupancy float64     `json:"predicted_occupancy"`
}

// HourFormatted renders the hour as "H:00".
func (e ScheduleEntry) HourFormatted() string {
	return fmt.Sprintf("%d:00", e.Hour)
}

// MarshalJSON adds the formatted hour to the encoded entry.
func (e ScheduleEntry) MarshalJSON() ([]byte, error) {
	type alias ScheduleEntry
	return json.Marshal(struct {
		alias
		HourFormatted string `json:"hour_formatted"`
	}{alias(e), e.HourFormatted()})
}

// WeeklySchedule maps weekday names to 24 entries ordered by hour.
type WeeklySchedule map[string][]ScheduleEntry

// Len returns the total number of entries across all days.
func (s WeeklySchedule) Len() int {
	n := 0
	for _, day := range s {
		n += len(day)
	}
	return n
}

// CurrentTier is the schedule entry in effect at a given instant.
type CurrentTier struct {
	Day string `json:"day"`
	ScheduleEntry
}

// MarshalJSON flattens the entry next to the day. The tier is reported as
// pricing_tier on this payload.
func (c CurrentTier) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Day                string      `json:"day"`
		Hour               int         `json:"hour"`
		HourFormatted      string      `json:"hour_formatted"`
		Tier               PricingTier `json:"pricing_tier"`
		Price              float64     `json:"price"`
		PredictedOccupancy float64     `json:"predicted_occupancy"`
	}{c.Day, c.Hour, c.HourFormatted(), c.Tier, c.Price, c.PredictedOccupancy})
}
