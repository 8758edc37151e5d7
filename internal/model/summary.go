package model

import (
	"encoding/json"
	"time"
)

// Average is a computed mean that is only meaningful when at least one
// hour contributed to it. Defined=false is distinct from a value of 0:
// a day with no price data has an undefined average, a day priced at
// exactly zero does not. Serializes to JSON null when undefined.
type Average struct {
	Value   float64
	Defined bool
}

func DefinedAverage(v float64) Average {
	return Average{Value: v, Defined: true}
}

// AverageOf returns the arithmetic mean of vals, undefined for an empty
// slice.
func AverageOf(vals []float64) Average {
	if len(vals) == 0 {
		return Average{}
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return DefinedAverage(sum / float64(len(vals)))
}

func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}

func (a *Average) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = Average{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = DefinedAverage(v)
	return nil
}

// HourlyRecord is the smallest unit of the valuation ledger: one
// calendar hour's energy, price and derived value.
//
// HasPrice=false means no quote existed for the hour; HasValue follows
// from it (value requires both energy and price). An hour with no
// samples still appears with EnergyKWh=0 so daily tables always cover
// hours 0-23.
type HourlyRecord struct {
	Date Date
	Hour int

	EnergyKWh float64

	PricePerMWh float64
	HasPrice    bool

	ValueEUR float64
	HasValue bool
}

// DailySummary is the roll-up of one day's 24 hourly records.
//
// AvgPricePerMWh is the simple unweighted mean over hours with a
// defined price. It is intentionally not energy-weighted; see
// MonthlySummary.AvgWorkingHourPrice for the production-filtered mean.
type DailySummary struct {
	Date Date

	TotalEnergyKWh float64
	TotalValueEUR  float64
	AvgPricePerMWh Average

	// Hours is always exactly 24 records, hours 0-23 ascending.
	Hours []HourlyRecord
}

// MonthlyDay is one day's contribution to a monthly summary: the full
// daily summary plus the working-hour figures the monthly view reports
// per day.
type MonthlyDay struct {
	Summary DailySummary

	TotalEnergyMWh      float64
	WorkingHours        int
	AvgWorkingHourPrice Average
}

// MonthlySummary aggregates all days of one month that have data.
//
// A "working hour" is an hour whose production exceeds the configured
// near-zero threshold, i.e. the asset was actually generating.
// AvgWorkingHourPrice is the arithmetic mean of price over the
// month-wide union of priced working hours; it is undefined when the
// month has no such hour.
type MonthlySummary struct {
	Year  int
	Month time.Month

	TotalEnergyMWh float64
	TotalValueEUR  float64

	AvgWorkingHourPrice Average
	DaysWithData        int
	TotalWorkingHours   int

	Days map[Date]MonthlyDay
}

// MonthlyStatus tags the two terminal shapes of a monthly query.
// Keep these values stable; they appear verbatim in API responses.
type MonthlyStatus string

const (
	MonthlyPopulated MonthlyStatus = "populated"
	MonthlyNoData    MonthlyStatus = "no_data"
)

// MonthlyResult is the tagged variant returned for a monthly query.
// Callers must branch on Status: Summary is nil when Status is
// MonthlyNoData, and Message is only set in that case.
type MonthlyResult struct {
	Status  MonthlyStatus
	Summary *MonthlySummary
	Message string
}
