package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/smartpark/core/metrics"
	"github.com/kilianp07/smartpark/core/model"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordSchedule(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket", Facility: "lot-a"})
	defer sink.Close()

	now := time.Now()
	require.NoError(t, sink.RecordSchedule(coremetrics.ScheduleEvent{GenerationID: "g1", Schedule: testSchedule(), Time: now}))

	var lines []string
	for _, e := range testSchedule()["Monday"] {
		p := write.NewPointWithMeasurement("pricing_schedule").
			AddTag("day", "Monday").
			AddTag("hour", e.HourFormatted()).
			AddTag("tier", e.Tier.String()).
			AddTag("generation_id", "g1").
			AddTag("facility", "lot-a").
			AddField("price", e.Price).
			AddField("predicted_occupancy", e.PredictedOccupancy).
			SetTime(now)
		lines = append(lines, strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)))
	}
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, strings.Join(lines, "\n"), rec.bodies[0])

	require.NoError(t, sink.RecordSchedule(coremetrics.ScheduleEvent{Schedule: testSchedule(), CacheHit: true}))
	assert.Len(t, rec.bodies, 1, "cache hits are not written")
}

func TestInfluxSink_RecordCurrentTier(t *testing.T) {
	rec := &bodyRecorder{}
	srv := rec.server(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	cur := model.CurrentTier{Day: "Friday", ScheduleEntry: model.ScheduleEntry{Hour: 17, Tier: model.TierHigh, Price: 3, PredictedOccupancy: 80.5}}
	require.NoError(t, sink.RecordCurrentTier(coremetrics.TierEvent{Current: cur, Changed: true, Time: now}))

	p := write.NewPointWithMeasurement("current_tier").
		AddTag("day", "Friday").
		AddTag("tier", "High").
		AddField("hour", 17).
		AddField("price", 3.0).
		AddField("predicted_occupancy", 80.5).
		AddField("changed", true).
		SetTime(now)
	require.Len(t, rec.bodies, 1)
	assert.Equal(t, strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)), rec.bodies[0])
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	assert.IsType(t, coremetrics.NopSink{}, sink)
	assert.True(t, called, "health endpoint not called")
}
