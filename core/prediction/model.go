package prediction

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/smartpark/core/model"
)

// ErrSparseHistory is returned when observations do not cover every
// (weekday, hour) slot.
var ErrSparseHistory = errors.New("history does not cover every weekday hour")

// Observation is a measured occupancy value.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Profile holds one value per (ISO weekday, hour).
type Profile [7][24]float64

// Model is a fitted weekly occupancy profile.
type Model struct {
	ID           string         `json:"id"`
	FittedAt     time.Time      `json:"fitted_at"`
	Location     string         `json:"location"`
	Observations int            `json:"observations"`
	Mean         Profile        `json:"mean"`
	StdDev       Profile        `json:"std_dev"`
	Params       map[string]any `json:"params,omitempty"`
}

// Fit computes the mean and standard deviation of observations per
// (weekday, hour) in loc. Every slot needs at least one observation.
func Fit(obs []Observation, loc *time.Location, now time.Time) (Model, error) {
	if loc == nil {
		loc = time.UTC
	}
	var groups [7][24][]float64
	for _, o := range obs {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return Model{}, fmt.Errorf("invalid observation at %s", o.Timestamp)
		}
		t := o.Timestamp.In(loc)
		d, h := model.DayOfWeek(t), t.Hour()
		groups[d][h] = append(groups[d][h], o.Value)
	}
	m := Model{
		ID:           uuid.NewString(),
		FittedAt:     now,
		Location:     loc.String(),
		Observations: len(obs),
	}
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			values := groups[d][h]
			switch len(values) {
			case 0:
				return Model{}, fmt.Errorf("%w: %s %d:00", ErrSparseHistory, model.DayNames[d], h)
			case 1:
				m.Mean[d][h] = values[0]
			default:
				m.Mean[d][h], m.StdDev[d][h] = stat.MeanStdDev(values, nil)
			}
		}
	}
	return m, nil
}

// Forecast projects the profile over horizonHours consecutive hours starting
// at the hour containing from.
func (m Model) Forecast(from time.Time, horizonHours int) ([]model.ForecastPoint, error) {
	loc, err := time.LoadLocation(m.Location)
	if err != nil {
		return nil, fmt.Errorf("model location: %w", err)
	}
	local := from.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
	points := make([]model.ForecastPoint, 0, horizonHours)
	for i := 0; i < horizonHours; i++ {
		t := start.Add(time.Duration(i) * time.Hour)
		points = append(points, model.ForecastPoint{
			Timestamp:      t,
			PredictedValue: m.Mean[model.DayOfWeek(t)][t.Hour()],
		})
	}
	return points, nil
}
