package valuation

import (
	"fmt"
	"sort"
	"time"

	"solarlog/internal/model"
)

// SummarizeMonth rolls a month's daily summaries up into a
// MonthlyResult.
//
// Only days that actually have data belong in days; dates entirely
// without samples are excluded from the month, not counted as zero
// days. Zero qualifying days yields the NoData variant, with no
// numeric fields for callers to misread.
//
// The working-hour average covers the month-wide union of working
// hours: an hour counts as working when its energy exceeds the
// threshold, and contributes to the average only when it also has a
// price. The result is deterministic regardless of input order.
func (e *Engine) SummarizeMonth(year int, month time.Month, days []model.DailySummary) *model.MonthlyResult {
	if len(days) == 0 {
		return &model.MonthlyResult{
			Status:  model.MonthlyNoData,
			Message: fmt.Sprintf("no data for month %04d-%02d", year, int(month)),
		}
	}

	ordered := make([]model.DailySummary, len(days))
	copy(ordered, days)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	sum := &model.MonthlySummary{
		Year:  year,
		Month: month,
		Days:  make(map[model.Date]model.MonthlyDay, len(ordered)),
	}

	var monthPrices []float64
	for _, d := range ordered {
		md := e.rollupDay(d)
		sum.Days[d.Date] = md

		sum.TotalEnergyMWh += md.TotalEnergyMWh
		sum.TotalValueEUR += d.TotalValueEUR
		sum.TotalWorkingHours += md.WorkingHours

		for _, h := range d.Hours {
			if e.isWorkingHour(h) && h.HasPrice {
				monthPrices = append(monthPrices, h.PricePerMWh)
			}
		}
	}

	sum.DaysWithData = len(ordered)
	sum.AvgWorkingHourPrice = model.AverageOf(monthPrices)

	return &model.MonthlyResult{Status: model.MonthlyPopulated, Summary: sum}
}

func (e *Engine) rollupDay(d model.DailySummary) model.MonthlyDay {
	md := model.MonthlyDay{
		Summary:        d,
		TotalEnergyMWh: d.TotalEnergyKWh / 1000,
	}
	var prices []float64
	for _, h := range d.Hours {
		if !e.isWorkingHour(h) {
			continue
		}
		md.WorkingHours++
		if h.HasPrice {
			prices = append(prices, h.PricePerMWh)
		}
	}
	md.AvgWorkingHourPrice = model.AverageOf(prices)
	return md
}

func (e *Engine) isWorkingHour(h model.HourlyRecord) bool {
	return h.EnergyKWh > e.WorkingHourThresholdKWh
}
