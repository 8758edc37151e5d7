package valuation

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarlog/internal/model"
)

func TestWriteDailyCSV(t *testing.T) {
	date := model.NewDate(2024, time.June, 1)
	hours := fullHourSet(date)
	hours[10] = model.HourlyRecord{Date: date, Hour: 10, EnergyKWh: 50, PricePerMWh: 80, HasPrice: true}
	s, err := New(0).SummarizeDay(date, Valuate(hours))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "day.csv")
	require.NoError(t, WriteDailyCSV(path, s))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 25)
	assert.Equal(t, []string{"date", "hour", "energy_kwh", "price_per_mwh", "value_eur"}, rows[0])

	// priced hour carries all columns
	assert.Equal(t, []string{"2024-06-01", "10", "50.000000", "80.000000", "4.000000"}, rows[11])
	// unpriced hours leave price and value empty, not zero
	assert.Equal(t, []string{"2024-06-01", "0", "0.000000", "", ""}, rows[1])
}
