// Package export writes pricing schedules and occupancy history to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/prediction"
)

// ScheduleHeader is the header row of schedule CSV files.
var ScheduleHeader = []string{"Day", "Hour", "Pricing_Tier", "Price", "Predicted_Occupancy"}

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, s model.WeeklySchedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// WriteCSV writes one row per hour, Monday first.
func WriteCSV(w io.Writer, s model.WeeklySchedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ScheduleHeader); err != nil {
		return err
	}
	for _, day := range model.DayNames {
		for _, e := range s[day] {
			rec := []string{
				day,
				strconv.Itoa(e.Hour),
				e.Tier.String(),
				strconv.FormatFloat(e.Price, 'f', 2, 64),
				strconv.FormatFloat(e.PredictedOccupancy, 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// observationLayouts are accepted for the ds column of history files.
var observationLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04"}

// WriteObservationsCSV writes history as ds,y rows.
func WriteObservationsCSV(w io.Writer, obs []prediction.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ds", "y"}); err != nil {
		return err
	}
	for _, o := range obs {
		if err := cw.Write([]string{
			o.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(o.Value, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadObservationsCSV parses ds,y rows. Timestamps without an offset are
// read in loc.
func ReadObservationsCSV(r io.Reader, loc *time.Location) ([]prediction.Observation, error) {
	if loc == nil {
		loc = time.UTC
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.TrimSpace(header[0]) != "ds" || strings.TrimSpace(header[1]) != "y" {
		return nil, fmt.Errorf("unexpected header %v, want ds,y", header)
	}
	var obs []prediction.Observation
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return obs, nil
		}
		if err != nil {
			return nil, err
		}
		ts, err := parseTimestamp(strings.TrimSpace(rec[0]), loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		obs = append(obs, prediction.Observation{Timestamp: ts, Value: v})
	}
}

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range observationLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
