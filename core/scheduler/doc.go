// Package scheduler keeps the tier in effect up to date. A TierWatcher
// resolves the current schedule entry on a fixed interval, or at every hour
// boundary by default, and publishes a TierChangeEvent whenever the tier or
// the price changes.
package scheduler
