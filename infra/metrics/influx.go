package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/smartpark/core/metrics"
	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/infra/logger"
)

// InfluxConfig holds the connection settings of an InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
	// Facility tags every point so several car parks can share a bucket.
	Facility string `json:"facility"`
}

// InfluxSink writes schedules and tier snapshots to InfluxDB using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	facility string
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		facility: cfg.Facility,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a NopSink
// if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSchedule writes one pricing_schedule point per entry, in weekday
// order. Cache hits are skipped since their schedule was already written.
func (s *InfluxSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	if ev.CacheHit {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	points := make([]*write.Point, 0, ev.Schedule.Len())
	for _, day := range model.DayNames {
		for _, e := range ev.Schedule[day] {
			p := write.NewPointWithMeasurement("pricing_schedule").
				AddTag("day", day).
				AddTag("hour", e.HourFormatted()).
				AddTag("tier", e.Tier.String()).
				AddTag("generation_id", ev.GenerationID)
			s.tagFacility(p)
			p.AddField("price", round3(e.Price)).
				AddField("predicted_occupancy", round3(e.PredictedOccupancy)).
				SetTime(ev.Time)
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordCurrentTier writes the tier in effect.
func (s *InfluxSink) RecordCurrentTier(ev coremetrics.TierEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("current_tier").
		AddTag("day", ev.Current.Day).
		AddTag("tier", ev.Current.Tier.String())
	s.tagFacility(p)
	p.AddField("hour", ev.Current.Hour).
		AddField("price", round3(ev.Current.Price)).
		AddField("predicted_occupancy", round3(ev.Current.PredictedOccupancy)).
		AddField("changed", ev.Changed).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client resources.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func (s *InfluxSink) tagFacility(p *write.Point) {
	if s.facility != "" {
		p.AddTag("facility", s.facility)
	}
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
