package valuation

import (
	"encoding/csv"
	"os"
	"strconv"

	"solarlog/internal/model"
)

// WriteDailyCSV exports one day's hourly ledger for spreadsheet use.
// Absent prices and values are written as empty cells, never as 0.
func WriteDailyCSV(path string, s *model.DailySummary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"date",
		"hour",
		"energy_kwh",
		"price_per_mwh",
		"value_eur",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, h := range s.Hours {
		row := []string{
			h.Date.String(),
			strconv.Itoa(h.Hour),
			fmtFloat(h.EnergyKWh),
			fmtOptFloat(h.PricePerMWh, h.HasPrice),
			fmtOptFloat(h.ValueEUR, h.HasValue),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fmtOptFloat(x float64, ok bool) string {
	if !ok {
		return ""
	}
	return fmtFloat(x)
}
