// Package events defines the pricing events emitted on the event bus.
//
// Available event types:
//   - ScheduleEvent: a weekly schedule was computed
//   - TierChangeEvent: the tier or price in effect changed
package events
