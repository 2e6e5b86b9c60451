package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/smartpark/core/events"
	"github.com/kilianp07/smartpark/core/logger"
	"github.com/kilianp07/smartpark/core/metrics"
	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/prediction"
	"github.com/kilianp07/smartpark/internal/eventbus"
)

// DefaultHorizonHours is one full week of hourly forecasts.
const DefaultHorizonHours = 7 * HoursPerDay

// Options configures a Service.
type Options struct {
	Provider prediction.Provider
	// ProviderName labels provider failures in metrics.
	ProviderName string
	Pricing      model.PricingConfig
	// HorizonHours is the forecast length requested from the provider.
	HorizonHours int
	// Location is the facility time zone. Forecast timestamps are converted
	// into it before aggregation. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
	Logger   logger.Logger
	Sink     metrics.Sink
	Bus      eventbus.EventBus
}

// Snapshot is the result of one pass through the pipeline. Snapshots may be
// shared between callers and must be treated as read-only.
type Snapshot struct {
	GenerationID   string
	DataVersion    string
	ComputedAt     time.Time
	CacheHit       bool
	Buckets        []model.DayHourBucket
	Classification model.Classification
	Schedule       model.WeeklySchedule
}

type cacheKey struct {
	horizon int
	version string
}

// Service runs forecasts through the pricing pipeline. Results are memoised
// per (horizon, provider data version); providers that do not implement
// prediction.Versioned, or report an empty version, are queried every time.
type Service struct {
	provider prediction.Provider
	name     string
	cfg      model.PricingConfig
	horizon  int
	loc      *time.Location
	now      func() time.Time
	log      logger.Logger
	sink     metrics.Sink
	bus      eventbus.EventBus

	mu     sync.Mutex
	key    cacheKey
	cached *Snapshot
}

// NewService validates opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Provider == nil {
		return nil, errors.New("pricing service requires a provider")
	}
	cfg := opts.Pricing
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pricing config: %w", err)
	}
	if opts.HorizonHours == 0 {
		opts.HorizonHours = DefaultHorizonHours
	}
	if opts.HorizonHours < 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d", opts.HorizonHours)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.NopLogger{}
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NopSink{}
	}
	return &Service{
		provider: opts.Provider,
		name:     opts.ProviderName,
		cfg:      cfg,
		horizon:  opts.HorizonHours,
		loc:      opts.Location,
		now:      opts.Now,
		log:      opts.Logger,
		sink:     opts.Sink,
		bus:      opts.Bus,
	}, nil
}

// PricingConfig returns the validated pricing table in use.
func (s *Service) PricingConfig() model.PricingConfig { return s.cfg }

// Location returns the facility time zone.
func (s *Service) Location() *time.Location { return s.loc }

// Provider returns the underlying forecast provider.
func (s *Service) Provider() prediction.Provider { return s.provider }

// Snapshot returns the current pipeline result, computing it when the cache
// is cold or the provider reports a new data version.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	start := s.now()
	version, err := s.dataVersion(ctx)
	if err != nil {
		s.providerFailed(err)
		return Snapshot{}, err
	}
	key := cacheKey{horizon: s.horizon, version: version}
	if version != "" {
		s.mu.Lock()
		if s.cached != nil && s.key == key {
			snap := *s.cached
			s.mu.Unlock()
			snap.CacheHit = true
			s.record(snap, start)
			return snap, nil
		}
		s.mu.Unlock()
	}

	points, err := s.provider.Predict(ctx, s.horizon)
	if err != nil {
		s.providerFailed(err)
		return Snapshot{}, fmt.Errorf("predict %d hours: %w", s.horizon, err)
	}
	snap, err := s.compute(points)
	if err != nil {
		return Snapshot{}, err
	}
	snap.DataVersion = version
	snap.ComputedAt = start

	if version != "" {
		s.mu.Lock()
		s.key = key
		cp := snap
		s.cached = &cp
		s.mu.Unlock()
	}
	s.log.Debugw("schedule computed", map[string]any{
		"generation_id": snap.GenerationID,
		"data_version":  version,
		"points":        len(points),
		"entries":       snap.Schedule.Len(),
	})
	s.record(snap, start)
	if s.bus != nil {
		s.bus.Publish(events.ScheduleEvent{
			GenerationID: snap.GenerationID,
			DataVersion:  version,
			Schedule:     snap.Schedule,
			Time:         start,
		})
	}
	return snap, nil
}

func (s *Service) compute(points []model.ForecastPoint) (Snapshot, error) {
	local := make([]model.ForecastPoint, len(points))
	for i, p := range points {
		local[i] = model.ForecastPoint{Timestamp: p.Timestamp.In(s.loc), PredictedValue: p.PredictedValue}
	}
	buckets, err := Aggregate(local)
	if err != nil {
		return Snapshot{}, err
	}
	if missing := MissingSlots(buckets); len(missing) > 0 {
		s.log.Warnf("forecast of %d points leaves %d weekday hours uncovered", len(points), len(missing))
	}
	classified, err := Classify(buckets)
	if err != nil {
		return Snapshot{}, err
	}
	schedule, err := BuildSchedule(classified, s.cfg)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		GenerationID:   uuid.NewString(),
		Buckets:        buckets,
		Classification: classified,
		Schedule:       schedule,
	}, nil
}

func (s *Service) dataVersion(ctx context.Context) (string, error) {
	v, ok := s.provider.(prediction.Versioned)
	if !ok {
		return "", nil
	}
	version, err := v.DataVersion(ctx)
	if err != nil {
		return "", fmt.Errorf("data version: %w", err)
	}
	return version, nil
}

func (s *Service) record(snap Snapshot, start time.Time) {
	err := s.sink.RecordSchedule(metrics.ScheduleEvent{
		GenerationID: snap.GenerationID,
		DataVersion:  snap.DataVersion,
		CacheHit:     snap.CacheHit,
		Duration:     s.now().Sub(start),
		Schedule:     snap.Schedule,
		Time:         start,
	})
	if err != nil {
		s.log.Warnf("record schedule metrics: %v", err)
	}
}

func (s *Service) providerFailed(err error) {
	if rec, ok := s.sink.(metrics.ProviderErrorRecorder); ok {
		if e := rec.RecordProviderError(s.name, err); e != nil {
			s.log.Warnf("record provider error: %v", e)
		}
	}
	s.log.Errorf("forecast provider %s: %v", s.name, err)
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.key = cacheKey{}
	s.mu.Unlock()
}

// Buckets returns the aggregated forecast.
func (s *Service) Buckets(ctx context.Context) ([]model.DayHourBucket, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Buckets, nil
}

// Classification returns the tier of every weekday hour.
func (s *Service) Classification(ctx context.Context) (model.Classification, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Classification, nil
}

// Schedule returns the weekly pricing schedule.
func (s *Service) Schedule(ctx context.Context) (model.WeeklySchedule, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Schedule, nil
}

// Day returns the schedule of a single weekday. An empty name selects today
// in the facility time zone. The returned name is canonical.
func (s *Service) Day(ctx context.Context, name string) (string, []model.ScheduleEntry, error) {
	if name == "" {
		name = model.DayName(s.now().In(s.loc))
	}
	d, err := model.ParseDay(name)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnknownDay, err)
	}
	day := model.DayNames[d]
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return "", nil, err
	}
	entries, ok := schedule[day]
	if !ok {
		return "", nil, fmt.Errorf("%w: forecast does not cover %s", ErrNoMatchingEntry, day)
	}
	return day, entries, nil
}

// Current resolves the entry in effect now.
func (s *Service) Current(ctx context.Context) (model.CurrentTier, error) {
	return s.CurrentAt(ctx, s.now())
}

// CurrentAt resolves the entry in effect at the given instant, read in the
// facility time zone.
func (s *Service) CurrentAt(ctx context.Context, at time.Time) (model.CurrentTier, error) {
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return model.CurrentTier{}, err
	}
	return ResolveCurrent(schedule, at.In(s.loc))
}

// Peaks returns the k busiest hours of every forecast day.
func (s *Service) Peaks(ctx context.Context, k int) (model.PeakReport, error) {
	if k <= 0 || k > HoursPerDay {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	buckets, err := s.Buckets(ctx)
	if err != nil {
		return nil, err
	}
	return TopPeaks(buckets, k)
}
