package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/smartpark/core/metrics"
)

// PromSink records pricing activity in Prometheus metrics.
type PromSink struct {
	builds       *prometheus.CounterVec
	latency      prometheus.Histogram
	tierHours    *prometheus.GaugeVec
	currentPrice prometheus.Gauge
	currentTier  prometheus.Gauge
	tierChanges  prometheus.Counter
	providerErrs *prometheus.CounterVec
}

// NewPromSink registers pricing metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_schedule_builds_total",
			Help: "Number of weekly schedule requests",
		}, []string{"cache_hit"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pricing_schedule_build_seconds",
			Help:    "Time to obtain a weekly schedule",
			Buckets: prometheus.DefBuckets,
		}),
		tierHours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pricing_tier_hours",
			Help: "Hours of the current weekly schedule in each tier",
		}, []string{"tier"}),
		currentPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricing_current_price",
			Help: "Hourly price in effect",
		}),
		currentTier: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pricing_current_tier",
			Help: "Tier in effect (0=Low, 1=Medium, 2=High, 3=Premium)",
		}),
		tierChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pricing_tier_changes_total",
			Help: "Number of observed tier or price changes",
		}),
		providerErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pricing_provider_errors_total",
			Help: "Failed forecast requests",
		}, []string{"provider"}),
	}
	var err error
	if s.builds, err = register(reg, s.builds); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	if s.tierHours, err = register(reg, s.tierHours); err != nil {
		return nil, err
	}
	if s.currentPrice, err = register(reg, s.currentPrice); err != nil {
		return nil, err
	}
	if s.currentTier, err = register(reg, s.currentTier); err != nil {
		return nil, err
	}
	if s.tierChanges, err = register(reg, s.tierChanges); err != nil {
		return nil, err
	}
	if s.providerErrs, err = register(reg, s.providerErrs); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSchedule counts the request, observes its latency and refreshes the
// hours-per-tier gauge.
func (s *PromSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	s.builds.WithLabelValues(strconv.FormatBool(ev.CacheHit)).Inc()
	s.latency.Observe(ev.Duration.Seconds())
	for tier, n := range coremetrics.TierCounts(ev.Schedule) {
		s.tierHours.WithLabelValues(tier.String()).Set(float64(n))
	}
	return nil
}

// RecordCurrentTier sets the current price and tier gauges.
func (s *PromSink) RecordCurrentTier(ev coremetrics.TierEvent) error {
	s.currentPrice.Set(ev.Current.Price)
	s.currentTier.Set(float64(ev.Current.Tier))
	if ev.Changed {
		s.tierChanges.Inc()
	}
	return nil
}

// RecordProviderError counts a failed forecast request.
func (s *PromSink) RecordProviderError(provider string, _ error) error {
	if provider == "" {
		provider = "unknown"
	}
	s.providerErrs.WithLabelValues(provider).Inc()
	return nil
}
