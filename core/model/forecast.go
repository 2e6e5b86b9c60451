package model

import "time"

// ForecastPoint is a single hourly occupancy prediction.
type ForecastPoint struct {
	Timestamp      time.Time `json:"timestamp"`
	PredictedValue float64   `json:"predicted_value"`
}

// DayHourBucket is the mean predicted occupancy for one (weekday, hour) slot
// across the forecast horizon. DayOfWeek uses Monday = 0 ... Sunday = 6.
type DayHourBucket struct {
	DayOfWeek     int     `json:"day_of_week"`
	DayName       string  `json:"day_name"`
	Hour          int     `json:"hour"`
	MeanOccupancy float64 `json:"mean_occupancy"`
}

// ClassifiedHour is a bucket annotated with its percentile rank and tier.
type ClassifiedHour struct {
	Hour          int         `json:"hour"`
	Tier          PricingTier `json:"tier"`
	MeanOccupancy float64     `json:"mean_occupancy"`
	Percentile    float64     `json:"percentile"`
}

// Classification maps weekday names to their 24 classified hours.
type Classification map[string][]ClassifiedHour

// Peak is one of the busiest hours of a day.
type Peak struct {
	Hour          int     `json:"hour"`
	MeanOccupancy float64 `json:"mean_occupancy"`
}

// PeakReport maps weekday names to their busiest hours, busiest first.
type PeakReport map[string][]Peak
