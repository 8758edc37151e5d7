package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarlog/internal/model"
)

func buildTestDay(t *testing.T, e *Engine, date model.Date, energyByHour, priceByHour map[int]float64) model.DailySummary {
	t.Helper()
	hours := fullHourSet(date)
	for h, kwh := range energyByHour {
		hours[h].EnergyKWh = kwh
	}
	for h, p := range priceByHour {
		hours[h].PricePerMWh = p
		hours[h].HasPrice = true
	}
	s, err := e.SummarizeDay(date, Valuate(hours))
	require.NoError(t, err)
	return *s
}

func TestSummarizeMonthEmpty(t *testing.T) {
	r := New(0).SummarizeMonth(2024, time.June, nil)

	assert.Equal(t, model.MonthlyNoData, r.Status)
	assert.Nil(t, r.Summary)
	assert.Equal(t, "no data for month 2024-06", r.Message)
}

func TestSummarizeMonthAggregates(t *testing.T) {
	e := New(0)
	d1 := buildTestDay(t, e, model.NewDate(2024, time.June, 1),
		map[int]float64{10: 500, 11: 300},
		map[int]float64{10: 80, 11: 90})
	d2 := buildTestDay(t, e, model.NewDate(2024, time.June, 2),
		map[int]float64{12: 200},
		map[int]float64{12: 110})

	r := e.SummarizeMonth(2024, time.June, []model.DailySummary{d2, d1})

	require.Equal(t, model.MonthlyPopulated, r.Status)
	sum := r.Summary
	require.NotNil(t, sum)

	assert.Equal(t, 2, sum.DaysWithData)
	assert.Equal(t, 3, sum.TotalWorkingHours)
	assert.InDelta(t, 1.0, sum.TotalEnergyMWh, 1e-9)
	assert.InDelta(t, d1.TotalValueEUR+d2.TotalValueEUR, sum.TotalValueEUR, 1e-9)
	require.True(t, sum.AvgWorkingHourPrice.Defined)
	assert.InDelta(t, (80+90+110.0)/3, sum.AvgWorkingHourPrice.Value, 1e-9)

	day, ok := sum.Days[d1.Date]
	require.True(t, ok)
	assert.Equal(t, 2, day.WorkingHours)
	assert.InDelta(t, 0.8, day.TotalEnergyMWh, 1e-9)
	require.True(t, day.AvgWorkingHourPrice.Defined)
	assert.InDelta(t, 85, day.AvgWorkingHourPrice.Value, 1e-9)
}

func TestSummarizeMonthOrderIndependent(t *testing.T) {
	e := New(0)
	days := []model.DailySummary{
		buildTestDay(t, e, model.NewDate(2024, time.June, 3), map[int]float64{9: 10}, map[int]float64{9: 50}),
		buildTestDay(t, e, model.NewDate(2024, time.June, 1), map[int]float64{10: 20}, map[int]float64{10: 60}),
		buildTestDay(t, e, model.NewDate(2024, time.June, 2), map[int]float64{11: 30}, map[int]float64{11: 70}),
	}
	reversed := []model.DailySummary{days[2], days[1], days[0]}

	a := e.SummarizeMonth(2024, time.June, days)
	b := e.SummarizeMonth(2024, time.June, reversed)

	require.Equal(t, model.MonthlyPopulated, a.Status)
	assert.Equal(t, a.Summary.TotalEnergyMWh, b.Summary.TotalEnergyMWh)
	assert.Equal(t, a.Summary.TotalValueEUR, b.Summary.TotalValueEUR)
	assert.Equal(t, a.Summary.AvgWorkingHourPrice, b.Summary.AvgWorkingHourPrice)
}

// A day whose production never clears the working-hour threshold is
// still a day with data: it counts toward days_with_data while
// contributing no working hours, and the working-hour average stays
// undefined rather than zero.
func TestSummarizeMonthAllHoursBelowThreshold(t *testing.T) {
	e := New(0)
	day := buildTestDay(t, e, model.NewDate(2024, time.December, 15),
		map[int]float64{12: 0.0005},
		map[int]float64{12: 95})

	r := e.SummarizeMonth(2024, time.December, []model.DailySummary{day})

	require.Equal(t, model.MonthlyPopulated, r.Status)
	sum := r.Summary
	assert.Equal(t, 1, sum.DaysWithData)
	assert.Equal(t, 0, sum.TotalWorkingHours)
	assert.False(t, sum.AvgWorkingHourPrice.Defined)
	assert.InDelta(t, 0.0005/1000, sum.TotalEnergyMWh, 1e-12)
}

// Working hours without a price count toward the working-hour total but
// are left out of the working-hour price average.
func TestSummarizeMonthUnpricedWorkingHour(t *testing.T) {
	e := New(0)
	day := buildTestDay(t, e, model.NewDate(2024, time.June, 5),
		map[int]float64{10: 100, 11: 100},
		map[int]float64{10: 80})

	r := e.SummarizeMonth(2024, time.June, []model.DailySummary{day})

	require.Equal(t, model.MonthlyPopulated, r.Status)
	assert.Equal(t, 2, r.Summary.TotalWorkingHours)
	require.True(t, r.Summary.AvgWorkingHourPrice.Defined)
	assert.InDelta(t, 80, r.Summary.AvgWorkingHourPrice.Value, 1e-9)
}
