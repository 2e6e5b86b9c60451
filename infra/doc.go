// Package infra contains technical adapters: forecast clients, the SQLite
// model store, MQTT signage, metrics exporters and Sentry monitoring. These
// packages should depend only on the interfaces defined in the core packages.
package infra
