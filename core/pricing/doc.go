// Package pricing derives demand-responsive parking prices from an hourly
// occupancy forecast.
//
// The engine is a chain of pure functions:
//
//	points -> Aggregate -> Classify -> BuildSchedule -> ResolveCurrent
//	                    \-> TopPeaks
//
// Weekdays follow the ISO convention (Monday = 0) and are evaluated in the
// location carried by each timestamp. Service wires the chain to a forecast
// provider and memoises aggregation results per provider data version.
package pricing
