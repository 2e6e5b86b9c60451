package pricing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/smartpark/core/events"
	"github.com/kilianp07/smartpark/core/metrics"
	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/prediction"
	"github.com/kilianp07/smartpark/internal/eventbus"
)

type captureSink struct {
	mu        sync.Mutex
	schedules []metrics.ScheduleEvent
	failures  []string
}

func (c *captureSink) RecordSchedule(ev metrics.ScheduleEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedules = append(c.schedules, ev)
	return nil
}

func (c *captureSink) RecordProviderError(name string, _ error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, name)
	return nil
}

type unversioned struct{ calls int }

func (u *unversioned) Predict(_ context.Context, h int) ([]model.ForecastPoint, error) {
	u.calls++
	return weekPoints(weekStart, h, profileValue), nil
}

func newTestService(t *testing.T, p prediction.Provider, opts Options) *Service {
	t.Helper()
	opts.Provider = p
	opts.ProviderName = "mock"
	if opts.Now == nil {
		opts.Now = func() time.Time { return weekStart.Add(8*time.Hour + 30*time.Minute) }
	}
	svc, err := NewService(opts)
	require.NoError(t, err)
	return svc
}

func TestService_CachesByVersion(t *testing.T) {
	p := &prediction.MockProvider{Points: weekPoints(weekStart, 168, profileValue), Version: "v1"}
	sink := &captureSink{}
	svc := newTestService(t, p, Options{Sink: sink})
	ctx := context.Background()

	first, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.NotEmpty(t, first.GenerationID)
	assert.Equal(t, "v1", first.DataVersion)
	assert.Equal(t, 168, first.Schedule.Len())

	second, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.GenerationID, second.GenerationID)
	assert.Equal(t, 1, p.Calls)

	p.Version = "v2"
	third, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.NotEqual(t, first.GenerationID, third.GenerationID)
	assert.Equal(t, 2, p.Calls)

	svc.Invalidate()
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Calls)

	require.Len(t, sink.schedules, 4)
	assert.True(t, sink.schedules[1].CacheHit)
}

func TestService_NoCacheWithoutVersion(t *testing.T) {
	ctx := context.Background()
	u := &unversioned{}
	svc := newTestService(t, u, Options{})
	_, err := svc.Schedule(ctx)
	require.NoError(t, err)
	_, err = svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, u.calls)

	p := &prediction.MockProvider{Points: weekPoints(weekStart, 168, profileValue)}
	svc = newTestService(t, p, Options{})
	_, err = svc.Schedule(ctx)
	require.NoError(t, err)
	_, err = svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Calls)
}

func TestService_ModelUnavailable(t *testing.T) {
	p := &prediction.MockProvider{Err: prediction.ErrModelUnavailable, Version: "v1"}
	sink := &captureSink{}
	svc := newTestService(t, p, Options{Sink: sink})

	_, err := svc.Schedule(context.Background())
	assert.ErrorIs(t, err, prediction.ErrModelUnavailable)
	_, err = svc.Current(context.Background())
	assert.ErrorIs(t, err, prediction.ErrModelUnavailable)
	assert.Equal(t, []string{"mock", "mock"}, sink.failures)

	seasonal := prediction.NewSeasonalProvider(prediction.NewMemoryStore(), nil)
	svc = newTestService(t, seasonal, Options{})
	_, err = svc.Schedule(context.Background())
	assert.ErrorIs(t, err, prediction.ErrModelUnavailable)
}

func TestService_Current(t *testing.T) {
	p := &prediction.MockProvider{Points: weekPoints(weekStart, 168, func(_, h int) float64 { return mondayProfile[h] }), Version: "v1"}
	svc := newTestService(t, p, Options{})

	cur, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Monday", cur.Day)
	assert.Equal(t, 8, cur.Hour)
	assert.Equal(t, model.TierPremium, cur.Tier)
	assert.Equal(t, 4.00, cur.Price)
}

func TestService_LocationShiftsBuckets(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// Forecast generated in UTC: Monday 00:00 UTC is Monday 09:00 in Tokyo.
	p := &prediction.MockProvider{Points: weekPoints(weekStart, 168, profileValue), Version: "v1"}
	svc := newTestService(t, p, Options{Location: tokyo})

	buckets, err := svc.Buckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 168)
	for _, b := range buckets {
		if b.DayOfWeek == 0 && b.Hour == 9 {
			assert.InDelta(t, profileValue(0, 0), b.MeanOccupancy, 1e-9)
		}
	}

	cur, err := svc.CurrentAt(context.Background(), weekStart)
	require.NoError(t, err)
	assert.Equal(t, "Monday", cur.Day)
	assert.Equal(t, 9, cur.Hour)
}

func TestService_DayAndPeaks(t *testing.T) {
	p := &prediction.MockProvider{Points: weekPoints(weekStart, 168, profileValue), Version: "v1"}
	svc := newTestService(t, p, Options{})
	ctx := context.Background()

	name, entries, err := svc.Day(ctx, "friday")
	require.NoError(t, err)
	assert.Equal(t, "Friday", name)
	assert.Len(t, entries, 24)

	name, _, err = svc.Day(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Monday", name)

	_, _, err = svc.Day(ctx, "Caturday")
	assert.ErrorIs(t, err, ErrUnknownDay)

	peaks, err := svc.Peaks(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, peaks, 7)
	assert.Len(t, peaks["Sunday"], 3)

	calls := p.Calls
	_, err = svc.Peaks(ctx, 30)
	assert.ErrorIs(t, err, ErrInvalidK)
	assert.Equal(t, calls, p.Calls)
}

func TestService_PublishesScheduleEvent(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()

	p := &prediction.MockProvider{Points: weekPoints(weekStart, 168, profileValue), Version: "v7"}
	svc := newTestService(t, p, Options{Bus: bus})
	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	_, err = svc.Snapshot(context.Background())
	require.NoError(t, err)

	select {
	case ev := <-sub:
		se, ok := ev.(events.ScheduleEvent)
		require.True(t, ok)
		assert.Equal(t, snap.GenerationID, se.GenerationID)
		assert.Equal(t, "v7", se.DataVersion)
	case <-time.After(time.Second):
		t.Fatal("no schedule event")
	}
	select {
	case ev := <-sub:
		t.Fatalf("unexpected event for cache hit: %T", ev)
	default:
	}
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Options{})
	assert.Error(t, err)

	p := &prediction.MockProvider{}
	_, err = NewService(Options{Provider: p, Pricing: model.PricingConfig{BasePrice: -1, TierMultipliers: map[model.PricingTier]float64{model.TierLow: 1}}})
	assert.Error(t, err)

	_, err = NewService(Options{Provider: p, HorizonHours: -5})
	assert.Error(t, err)

	svc, err := NewService(Options{Provider: p})
	require.NoError(t, err)
	assert.Equal(t, DefaultHorizonHours, svc.horizon)
	assert.Equal(t, model.DefaultPricingConfig(), svc.PricingConfig())
}

func TestService_PipelineErrorsNotCached(t *testing.T) {
	p := &prediction.MockProvider{Points: weekPoints(weekStart, 30, profileValue), Version: "v1"}
	svc := newTestService(t, p, Options{})
	_, err := svc.Schedule(context.Background())
	assert.True(t, errors.Is(err, ErrIncompleteDay))
	_, err = svc.Schedule(context.Background())
	assert.ErrorIs(t, err, ErrIncompleteDay)
	assert.Equal(t, 2, p.Calls)
}
