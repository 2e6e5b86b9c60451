package mqtt

import (
	"context"

	"github.com/kilianp07/smartpark/core/events"
	"github.com/kilianp07/smartpark/infra/logger"
	"github.com/kilianp07/smartpark/internal/eventbus"
)

// Relay forwards pricing events from the bus to the signage publisher until
// ctx is canceled or the bus is closed. Publish failures are logged and do
// not stop the relay.
func Relay(ctx context.Context, bus eventbus.EventBus, pub Publisher) {
	relay(ctx, bus, bus.Subscribe(), pub)
}

// StartRelay subscribes before returning, so no event published afterwards is
// missed, and relays in the background. The returned channel is closed once
// the relay stops.
func StartRelay(ctx context.Context, bus eventbus.EventBus, pub Publisher) <-chan struct{} {
	sub := bus.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		relay(ctx, bus, sub, pub)
	}()
	return done
}

func relay(ctx context.Context, bus eventbus.EventBus, sub <-chan eventbus.Event, pub Publisher) {
	log := logger.New("mqtt_relay")
	defer bus.Unsubscribe(sub)
	eventbus.Consume(ctx, sub, func(ev eventbus.Event) {
		switch e := ev.(type) {
		case events.TierChangeEvent:
			if err := pub.PublishCurrent(e.Current); err != nil {
				log.Errorf("publish current tier: %v", err)
			}
		case events.ScheduleEvent:
			if err := pub.PublishSchedule(e.Schedule); err != nil {
				log.Errorf("publish schedule %s: %v", e.GenerationID, err)
			}
		}
	})
}
