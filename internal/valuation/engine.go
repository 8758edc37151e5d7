package valuation

import (
	"fmt"

	"solarlog/internal/model"
)

// DefaultWorkingHourThresholdKWh is the near-zero production level above
// which an hour counts as "working" (the asset was actually generating).
const DefaultWorkingHourThresholdKWh = 0.001

// Engine is the valuation core. It is stateless apart from its
// configuration and safe for concurrent use: every method is a pure
// function of its inputs.
type Engine struct {
	// WorkingHourThresholdKWh separates genuine production from meter
	// noise when counting working hours.
	WorkingHourThresholdKWh float64
}

func New(workingHourThresholdKWh float64) *Engine {
	if workingHourThresholdKWh <= 0 {
		workingHourThresholdKWh = DefaultWorkingHourThresholdKWh
	}
	return &Engine{WorkingHourThresholdKWh: workingHourThresholdKWh}
}

// Valuate computes ValueEUR for each hourly record:
//
//	value_eur = energy_kwh * price_per_mwh / 1000
//
// when the hour has a price; hours without a quote keep HasValue=false
// (absent, not zero) so they are excluded from value totals and price
// averages. Negative prices are valued as given, never clamped.
// The input slice is not mutated.
func Valuate(hours []model.HourlyRecord) []model.HourlyRecord {
	out := make([]model.HourlyRecord, len(hours))
	for i, h := range hours {
		if h.HasPrice {
			h.ValueEUR = h.EnergyKWh * h.PricePerMWh / 1000
			h.HasValue = true
		}
		out[i] = h
	}
	return out
}

// SummarizeDay rolls one day's hourly records up into a DailySummary.
//
// The input must cover hours 0-23 exactly once; a wrong count, an
// out-of-range hour or a duplicate is a PreconditionError. Input order
// does not matter: records are placed into hour order first and sums
// always run hour-ascending, so any permutation of the same records
// reproduces bit-identical totals.
func (e *Engine) SummarizeDay(date model.Date, hours []model.HourlyRecord) (*model.DailySummary, error) {
	ordered, err := orderHourSet(date, hours)
	if err != nil {
		return nil, err
	}

	s := &model.DailySummary{Date: date, Hours: ordered}
	prices := make([]float64, 0, len(ordered))
	for _, h := range ordered {
		s.TotalEnergyKWh += h.EnergyKWh
		if h.HasValue {
			s.TotalValueEUR += h.ValueEUR
		}
		if h.HasPrice {
			prices = append(prices, h.PricePerMWh)
		}
	}
	s.AvgPricePerMWh = model.AverageOf(prices)
	return s, nil
}

// BuildDay is the full pipeline for one date: align, valuate, summarize.
func (e *Engine) BuildDay(date model.Date, samples []model.EnergySample, quotes []model.PriceQuote) (*model.DailySummary, error) {
	return e.SummarizeDay(date, Valuate(AlignDay(date, samples, quotes)))
}

// orderHourSet validates that hours covers 0-23 exactly once and
// returns a new slice with each record in its hour's slot.
func orderHourSet(date model.Date, hours []model.HourlyRecord) ([]model.HourlyRecord, error) {
	if len(hours) != 24 {
		return nil, &PreconditionError{Date: date, Reason: fmt.Sprintf("expected 24 hourly records, got %d", len(hours))}
	}
	out := make([]model.HourlyRecord, 24)
	var seen [24]bool
	for _, h := range hours {
		if h.Hour < 0 || h.Hour > 23 {
			return nil, &PreconditionError{Date: date, Reason: fmt.Sprintf("hour %d out of range", h.Hour)}
		}
		if seen[h.Hour] {
			return nil, &PreconditionError{Date: date, Reason: fmt.Sprintf("duplicate hour %d", h.Hour)}
		}
		seen[h.Hour] = true
		out[h.Hour] = h
	}
	return out, nil
}
