package metrics

import (
	"time"

	"github.com/kilianp07/smartpark/core/model"
)

// ScheduleEvent describes one weekly schedule computation.
type ScheduleEvent struct {
	GenerationID string
	DataVersion  string
	CacheHit     bool
	Duration     time.Duration
	Schedule     model.WeeklySchedule
	Time         time.Time
}

// Sink records schedule computations for observability purposes.
type Sink interface {
	RecordSchedule(ev ScheduleEvent) error
}

// TierEvent is a snapshot of the tier in effect at a given time.
type TierEvent struct {
	Current model.CurrentTier
	Changed bool
	Time    time.Time
}

// TierRecorder records the current tier and price.
type TierRecorder interface {
	RecordCurrentTier(ev TierEvent) error
}

// ProviderErrorRecorder counts failed forecast requests.
type ProviderErrorRecorder interface {
	RecordProviderError(provider string, err error) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSchedule(ScheduleEvent) error      { return nil }
func (NopSink) RecordCurrentTier(TierEvent) error       { return nil }
func (NopSink) RecordProviderError(string, error) error { return nil }

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSchedule forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSchedule(ev ScheduleEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSchedule(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordCurrentTier forwards tier snapshots when supported by the sink.
func (m *MultiSink) RecordCurrentTier(ev TierEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TierRecorder); ok {
			if err := rec.RecordCurrentTier(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordProviderError forwards provider failures when supported by the sink.
func (m *MultiSink) RecordProviderError(provider string, err error) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ProviderErrorRecorder); ok {
			if e := rec.RecordProviderError(provider, err); e != nil {
				return e
			}
		}
	}
	return nil
}

// Close closes every sink that holds resources.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// TierCounts returns how many hours of the schedule fall in each tier.
func TierCounts(s model.WeeklySchedule) map[model.PricingTier]int {
	counts := make(map[model.PricingTier]int, len(model.Tiers))
	for _, t := range model.Tiers {
		counts[t] = 0
	}
	for _, entries := range s {
		for _, e := range entries {
			counts[e.Tier]++
		}
	}
	return counts
}
