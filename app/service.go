package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	pricingapi "github.com/kilianp07/smartpark/api/pricing"
	"github.com/kilianp07/smartpark/config"
	coremetrics "github.com/kilianp07/smartpark/core/metrics"
	"github.com/kilianp07/smartpark/core/monitoring"
	"github.com/kilianp07/smartpark/core/prediction"
	"github.com/kilianp07/smartpark/core/pricing"
	"github.com/kilianp07/smartpark/core/scheduler"
	_ "github.com/kilianp07/smartpark/infra/forecast"
	"github.com/kilianp07/smartpark/infra/logger"
	"github.com/kilianp07/smartpark/infra/metrics"
	infmon "github.com/kilianp07/smartpark/infra/monitoring"
	"github.com/kilianp07/smartpark/infra/mqtt"
	"github.com/kilianp07/smartpark/internal/eventbus"
)

// Service wires the pricing pipeline to its HTTP, metrics and signage
// outputs.
type Service struct {
	Pricing *pricing.Service

	cfg       *config.Config
	bus       *eventbus.Bus
	sink      coremetrics.Sink
	publisher *mqtt.PahoClient
	watcher   *scheduler.TierWatcher
	router    *gin.Engine
	log       logger.Logger
}

// Setup applies the process-wide settings of cfg: log level and error
// monitoring.
func Setup(cfg *config.Config) error {
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	mon, err := infmon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)
	return nil
}

// NewPricingService builds the forecast provider and the pricing service
// described by cfg. sink and bus may be nil.
func NewPricingService(cfg *config.Config, sink coremetrics.Sink, bus eventbus.EventBus) (*pricing.Service, error) {
	provider, err := prediction.NewProvider(cfg.Prediction)
	if err != nil {
		return nil, fmt.Errorf("forecast provider %s: %w", cfg.Prediction.Type, err)
	}
	tariff, err := cfg.Pricing.Tariff()
	if err != nil {
		return nil, fmt.Errorf("pricing tariff: %w", err)
	}
	loc, err := cfg.Pricing.Location()
	if err != nil {
		return nil, err
	}
	return pricing.NewService(pricing.Options{
		Provider:     provider,
		ProviderName: cfg.Prediction.Type,
		Pricing:      tariff,
		HorizonHours: cfg.Pricing.HorizonHours,
		Location:     loc,
		Logger:       logger.New("pricing"),
		Sink:         sink,
		Bus:          bus,
	})
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New()
	svc, err := NewPricingService(cfg, sink, bus)
	if err != nil {
		return nil, err
	}

	var pub *mqtt.PahoClient
	if cfg.MQTT.Enabled {
		pub, err = mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
	}

	gin.SetMode(cfg.HTTP.Mode)
	handler := pricingapi.NewHandler(pricingapi.Options{
		Service:      svc,
		ProviderName: cfg.Prediction.Type,
		PeakCount:    cfg.Pricing.PeakCount,
		Logger:       logger.New("api"),
	})

	return &Service{
		Pricing:   svc,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		publisher: pub,
		watcher:   scheduler.NewTierWatcher(svc, bus, cfg.Watcher, logger.New("tier_watcher")),
		router:    pricingapi.NewRouter(handler),
		log:       logg,
	}, nil
}

// Handler returns the HTTP router.
func (s *Service) Handler() http.Handler { return s.router }

// Run starts the background workers and serves the API until ctx is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if s.publisher != nil {
		mqtt.StartRelay(ctx, s.bus, s.publisher)
	}
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.Watcher.Enabled {
		go s.watcher.Run(ctx)
	} else if _, err := s.Pricing.Snapshot(ctx); err != nil {
		// The API keeps serving; requests report the failure until a model is available.
		s.log.Warnf("initial schedule: %v", err)
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("pricing API listening on %s", s.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	monitoring.Flush(2 * time.Second)
	return nil
}
