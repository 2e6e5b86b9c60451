package metrics

import (
	"context"

	"github.com/kilianp07/smartpark/core/events"
	coremetrics "github.com/kilianp07/smartpark/core/metrics"
	"github.com/kilianp07/smartpark/infra/logger"
	"github.com/kilianp07/smartpark/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records tier changes
// on sinks implementing TierRecorder. It stops when the context is canceled
// or the bus is closed.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.TierRecorder)
	if !ok {
		return
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		eventbus.Consume(ctx, sub, func(ev eventbus.Event) {
			e, ok := ev.(events.TierChangeEvent)
			if !ok {
				return
			}
			changed := e.Previous == nil ||
				e.Previous.Tier != e.Current.Tier ||
				e.Previous.Price != e.Current.Price
			if err := rec.RecordCurrentTier(coremetrics.TierEvent{Current: e.Current, Changed: changed, Time: e.Time}); err != nil {
				log.Warnf("record current tier: %v", err)
			}
		})
	}()
}
