package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarlog/internal/model"
)

func TestAlignDayEmptyInputs(t *testing.T) {
	date := model.NewDate(2024, time.June, 1)

	hours := AlignDay(date, nil, nil)

	require.Len(t, hours, 24)
	for i, h := range hours {
		assert.Equal(t, i, h.Hour)
		assert.Equal(t, date, h.Date)
		assert.Zero(t, h.EnergyKWh)
		assert.False(t, h.HasPrice)
	}
}

func TestAlignDaySumsSamplesIntoHours(t *testing.T) {
	date := model.NewDate(2024, time.June, 1)
	samples := []model.EnergySample{
		{Timestamp: date.HourStart(10).Add(5 * time.Minute), EnergyKWh: 1.2},
		{Timestamp: date.HourStart(10).Add(35 * time.Minute), EnergyKWh: 2.3},
		{Timestamp: date.HourStart(11), EnergyKWh: 4.0},
	}

	hours := AlignDay(date, samples, nil)

	assert.InDelta(t, 3.5, hours[10].EnergyKWh, 1e-9)
	assert.InDelta(t, 4.0, hours[11].EnergyKWh, 1e-9)
	assert.Zero(t, hours[9].EnergyKWh)
}

func TestAlignDayAttachesMatchingQuote(t *testing.T) {
	date := model.NewDate(2024, time.June, 1)
	quotes := []model.PriceQuote{
		{Timestamp: date.HourStart(7), PricePerMWh: 81.5},
		{Timestamp: date.HourStart(8), PricePerMWh: -2.0},
	}

	hours := AlignDay(date, nil, quotes)

	require.True(t, hours[7].HasPrice)
	assert.Equal(t, 81.5, hours[7].PricePerMWh)
	require.True(t, hours[8].HasPrice)
	assert.Equal(t, -2.0, hours[8].PricePerMWh)
	assert.False(t, hours[9].HasPrice)
}

func TestAlignDayIgnoresOtherDays(t *testing.T) {
	date := model.NewDate(2024, time.June, 1)
	samples := []model.EnergySample{
		{Timestamp: date.Time().Add(-time.Minute), EnergyKWh: 5},
		{Timestamp: date.Time().AddDate(0, 0, 1), EnergyKWh: 7},
	}
	quotes := []model.PriceQuote{
		{Timestamp: date.Time().AddDate(0, 0, 1), PricePerMWh: 50},
	}

	hours := AlignDay(date, samples, quotes)

	for _, h := range hours {
		assert.Zero(t, h.EnergyKWh)
		assert.False(t, h.HasPrice)
	}
}
