// Package metrics defines the sinks that record pricing activity. Sinks like
// PromSink and InfluxSink receive one ScheduleEvent per schedule computation
// and, when they implement TierRecorder, the tier in effect after each watcher
// tick. The factory helpers return a MultiSink automatically when multiple
// sinks are configured.
package metrics
