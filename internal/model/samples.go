package model

import "time"

// EnergySample is one raw production reading from the inverter gateway.
// Readings arrive at sub-hourly resolution (typically every few minutes)
// and are already reduced to the energy produced since the previous
// reading. Energy is never negative; validation happens at ingestion.
type EnergySample struct {
	Timestamp time.Time
	EnergyKWh float64
}

// PriceQuote is one day-ahead market price for a single delivery hour.
// Timestamp is hour-aligned. Prices are EUR/MWh and may legitimately be
// negative.
type PriceQuote struct {
	Timestamp   time.Time
	PricePerMWh float64
}

// HourStart returns the quote's delivery hour start, UTC.
func (q PriceQuote) HourStart() time.Time {
	return q.Timestamp.UTC().Truncate(time.Hour)
}
