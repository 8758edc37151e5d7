package valuation

import (
	"time"

	"solarlog/internal/model"
)

// AlignDay normalizes raw samples and quotes onto the 24-hour grid of
// one calendar day.
//
// Energy: every sample whose timestamp falls inside an hour is summed
// into that hour's bucket (the meter reports incremental readings at
// sub-hourly resolution; this is the incremental-to-hourly reduction).
// Price: the single quote whose delivery hour matches is attached;
// hours without a quote keep HasPrice=false.
//
// The result always has exactly 24 records, hours 0-23 ascending. A day
// with no samples at all yields 24 zero-energy buckets, not an error.
// Samples and quotes outside the day are ignored.
func AlignDay(date model.Date, samples []model.EnergySample, quotes []model.PriceQuote) []model.HourlyRecord {
	hours := make([]model.HourlyRecord, 24)
	for h := range hours {
		hours[h] = model.HourlyRecord{Date: date, Hour: h}
	}

	dayStart := date.Time()
	dayEnd := dayStart.AddDate(0, 0, 1)
	inDay := func(t time.Time) bool {
		return !t.Before(dayStart) && t.Before(dayEnd)
	}

	for _, s := range samples {
		ts := s.Timestamp.UTC()
		if !inDay(ts) {
			continue
		}
		hours[ts.Hour()].EnergyKWh += s.EnergyKWh
	}

	for _, q := range quotes {
		hs := q.HourStart()
		if !inDay(hs) {
			continue
		}
		rec := &hours[hs.Hour()]
		rec.PricePerMWh = q.PricePerMWh
		rec.HasPrice = true
	}

	return hours
}
