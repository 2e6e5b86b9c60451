// Package prediction defines the forecast provider consumed by the pricing
// engine and a simple seasonal occupancy model used to implement it.
//
// A Model is a 7x24 profile of mean occupancy per (weekday, hour) fitted from
// historical observations. SeasonalProvider projects the latest stored model
// forward from the current hour. Generator produces synthetic history for
// demos and tests.
package prediction
