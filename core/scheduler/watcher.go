package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kilianp07/smartpark/core/events"
	"github.com/kilianp07/smartpark/core/logger"
	"github.com/kilianp07/smartpark/core/model"
	"github.com/kilianp07/smartpark/core/monitoring"
	"github.com/kilianp07/smartpark/internal/eventbus"
)

// Resolver returns the schedule entry in effect now.
type Resolver interface {
	Current(ctx context.Context) (model.CurrentTier, error)
}

// Config defines the watcher cadence.
type Config struct {
	Enabled bool `json:"enabled"`
	// Interval between checks. Zero aligns checks on hour boundaries.
	Interval time.Duration `json:"interval"`
	// Offset delays aligned checks past the hour.
	Offset time.Duration `json:"offset"`
}

// Validate rejects negative durations.
func (c Config) Validate() error {
	if c.Interval < 0 || c.Offset < 0 {
		return errors.New("watcher interval and offset must not be negative")
	}
	if c.Offset >= time.Hour {
		return errors.New("watcher offset must be below one hour")
	}
	return nil
}

// TierWatcher publishes tier changes on the event bus.
type TierWatcher struct {
	res Resolver
	bus eventbus.EventBus
	cfg Config
	log logger.Logger
	now func() time.Time

	mu   sync.Mutex
	last *model.CurrentTier
}

// NewTierWatcher creates a watcher. A nil logger discards output.
func NewTierWatcher(res Resolver, bus eventbus.EventBus, cfg Config, log logger.Logger) *TierWatcher {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &TierWatcher{res: res, bus: bus, cfg: cfg, log: log, now: time.Now}
}

// Last returns the most recently resolved entry.
func (w *TierWatcher) Last() (model.CurrentTier, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return model.CurrentTier{}, false
	}
	return *w.last, true
}

// Check resolves the current entry and publishes a TierChangeEvent when it
// differs in tier or price from the previous one. The first successful check
// always publishes.
func (w *TierWatcher) Check(ctx context.Context) (bool, error) {
	cur, err := w.res.Current(ctx)
	if err != nil {
		return false, err
	}
	w.mu.Lock()
	prev := w.last
	changed := prev == nil || prev.Tier != cur.Tier || prev.Price != cur.Price
	w.last = &cur
	w.mu.Unlock()

	if !changed {
		w.log.Debugf("tier unchanged: %s %s %s", cur.Day, cur.HourFormatted(), cur.Tier)
		return false, nil
	}
	w.log.Infof("tier now %s at %.2f (%s %s)", cur.Tier, cur.Price, cur.Day, cur.HourFormatted())
	if w.bus != nil {
		w.bus.Publish(events.TierChangeEvent{Previous: prev, Current: cur, Time: w.now()})
	}
	return true, nil
}

// Run checks immediately and then on every tick until ctx is canceled.
// Failed checks are logged and reported but do not stop the loop.
func (w *TierWatcher) Run(ctx context.Context) {
	for {
		if _, err := w.Check(ctx); err != nil && ctx.Err() == nil {
			w.log.Errorf("tier check failed: %v", err)
			monitoring.CaptureException(err, map[string]string{"component": "tier_watcher"})
		}
		timer := time.NewTimer(w.nextDelay())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (w *TierWatcher) nextDelay() time.Duration {
	if w.cfg.Interval > 0 {
		return w.cfg.Interval
	}
	return NextHourDelay(w.now(), w.cfg.Offset)
}

// NextHourDelay returns the wait from now until the next wall-clock hour of
// now's location, plus offset.
func NextHourDelay(now time.Time, offset time.Duration) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
	d := next.Sub(now) + offset
	if d > time.Hour {
		d -= time.Hour
	}
	return d
}
