package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"solarlog/internal/model"
	"solarlog/internal/store"
	"solarlog/internal/valuation"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "daily":
		cmdDaily(os.Args[2:])
	case "monthly":
		cmdMonthly(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli daily --db solarlog.db --date 2024-06-01 [--out results/day.csv]")
	fmt.Println("  cli monthly --db solarlog.db --month 2024-06")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - daily prints the 24-hour valuation ledger; --out also writes it as CSV")
	fmt.Println("  - monthly prints per-day rollups and the month summary")
}

func openService(dbPath string, threshold float64) (*store.Store, *valuation.Service) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	st, err := store.Open(dbPath, logger.WithField("component", "store"))
	if err != nil {
		panic(err)
	}
	svc := valuation.NewService(st, valuation.New(threshold), logger.WithField("component", "valuation"))
	return st, svc
}

func cmdDaily(args []string) {
	fs := flag.NewFlagSet("daily", flag.ExitOnError)
	dbPath := fs.String("db", "solarlog.db", "Path to SQLite database")
	dateStr := fs.String("date", "", "Date to report (YYYY-MM-DD)")
	outPath := fs.String("out", "", "Optional: write the hourly ledger as CSV")
	threshold := fs.Float64("threshold", valuation.DefaultWorkingHourThresholdKWh, "Working-hour threshold in kWh")
	_ = fs.Parse(args)

	if *dateStr == "" {
		fmt.Println("--date is required")
		os.Exit(2)
	}
	date, err := model.ParseDate(*dateStr)
	if err != nil {
		panic(err)
	}

	st, svc := openService(*dbPath, *threshold)
	defer st.Close()

	sum, err := svc.Daily(context.Background(), date)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Daily report for %s\n", sum.Date)
	fmt.Println("hour  energy_kwh  price_eur_mwh  value_eur")
	for _, h := range sum.Hours {
		price := "-"
		value := "-"
		if h.HasPrice {
			price = fmt.Sprintf("%.2f", h.PricePerMWh)
		}
		if h.HasValue {
			value = fmt.Sprintf("%.4f", h.ValueEUR)
		}
		fmt.Printf("%4d  %10.3f  %13s  %9s\n", h.Hour, h.EnergyKWh, price, value)
	}
	fmt.Printf("total energy: %.3f kWh\n", sum.TotalEnergyKWh)
	fmt.Printf("total value:  %.2f EUR\n", sum.TotalValueEUR)
	if sum.AvgPricePerMWh.Defined {
		fmt.Printf("avg price:    %.2f EUR/MWh\n", sum.AvgPricePerMWh.Value)
	} else {
		fmt.Println("avg price:    undefined (no price data)")
	}

	if *outPath != "" {
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			panic(err)
		}
		if err := valuation.WriteDailyCSV(*outPath, sum); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(sum.Hours), *outPath)
	}
}

func cmdMonthly(args []string) {
	fs := flag.NewFlagSet("monthly", flag.ExitOnError)
	dbPath := fs.String("db", "solarlog.db", "Path to SQLite database")
	monthStr := fs.String("month", "", "Month to report (YYYY-MM)")
	threshold := fs.Float64("threshold", valuation.DefaultWorkingHourThresholdKWh, "Working-hour threshold in kWh")
	_ = fs.Parse(args)

	if *monthStr == "" {
		fmt.Println("--month is required")
		os.Exit(2)
	}
	month, err := time.Parse("2006-01", *monthStr)
	if err != nil {
		panic(err)
	}

	st, svc := openService(*dbPath, *threshold)
	defer st.Close()

	res, err := svc.Monthly(context.Background(), month.Year(), month.Month())
	if err != nil {
		panic(err)
	}

	if res.Status == model.MonthlyNoData {
		fmt.Println(res.Message)
		return
	}

	s := res.Summary
	dates := make([]model.Date, 0, len(s.Days))
	for d := range s.Days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	fmt.Printf("Monthly report for %04d-%02d\n", s.Year, int(s.Month))
	fmt.Println("date        energy_mwh  value_eur  working_h  avg_work_price")
	for _, d := range dates {
		day := s.Days[d]
		avg := "-"
		if day.AvgWorkingHourPrice.Defined {
			avg = fmt.Sprintf("%.2f", day.AvgWorkingHourPrice.Value)
		}
		fmt.Printf("%s  %10.3f  %9.2f  %9d  %14s\n",
			d, day.TotalEnergyMWh, day.Summary.TotalValueEUR, day.WorkingHours, avg)
	}
	fmt.Printf("days with data:      %d\n", s.DaysWithData)
	fmt.Printf("total energy:        %.3f MWh\n", s.TotalEnergyMWh)
	fmt.Printf("total value:         %.2f EUR\n", s.TotalValueEUR)
	fmt.Printf("total working hours: %d\n", s.TotalWorkingHours)
	if s.AvgWorkingHourPrice.Defined {
		fmt.Printf("avg working price:   %.2f EUR/MWh\n", s.AvgWorkingHourPrice.Value)
	} else {
		fmt.Println("avg working price:   undefined (no priced working hours)")
	}
}
