package models

import "solarlog/internal/model"

// DailyResponse is the daily view: the day's summary plus the full
// 24-hour table.
type DailyResponse struct {
	Date       string       `json:"date"`
	Summary    DailySummary `json:"summary"`
	HourlyData []HourlyRow  `json:"hourly_data"`
}

// DailySummary contains the day's roll-up figures. The average price is
// the simple unweighted mean over priced hours and serializes to null
// when no hour had a price, which keeps it distinguishable from a
// price of zero.
type DailySummary struct {
	TotalEnergyKWh           float64       `json:"total_energy_kwh"`
	TotalEnergyMWh           float64       `json:"total_energy_mwh"`
	TotalValue               float64       `json:"total_value"`
	ArithmeticAvgPricePerMWh model.Average `json:"arithmetic_avg_price_per_mwh"`
}

// HourlyRow is one hour of the daily table. Price and value are null
// for hours without a quote, never zero-filled.
type HourlyRow struct {
	Hour        int      `json:"hour"`
	EnergyKWh   float64  `json:"energy_kwh"`
	PricePerMWh *float64 `json:"price_per_mwh"`
	Value       *float64 `json:"value"`
}

// MonthlyResponse is the tagged monthly view. Status is always set;
// month_summary and days are only present for "populated", message only
// for "no_data". Callers branch on status instead of sniffing shapes.
type MonthlyResponse struct {
	Status       string                `json:"status"`
	Message      string                `json:"message,omitempty"`
	MonthSummary *MonthSummary         `json:"month_summary,omitempty"`
	Days         map[string]MonthlyDay `json:"days,omitempty"`
}

// MonthSummary contains the month-wide roll-up figures.
type MonthSummary struct {
	TotalValue          float64       `json:"total_value"`
	TotalEnergyMWh      float64       `json:"total_energy_mwh"`
	AvgWorkingHourPrice model.Average `json:"avg_working_hour_price"`
	DaysWithData        int           `json:"days_with_data"`
	TotalWorkingHours   int           `json:"total_working_hours"`
}

// MonthlyDay is one day's entry in the monthly view.
type MonthlyDay struct {
	TotalValue          float64       `json:"total_value"`
	TotalEnergyMWh      float64       `json:"total_energy_mwh"`
	AvgWorkingHourPrice model.Average `json:"avg_working_hour_price"`
	WorkingHours        int           `json:"working_hours"`
}

// PricesResponse lists the stored quotes for one date.
type PricesResponse struct {
	Date   string     `json:"date"`
	Prices []PriceRow `json:"prices"`
}

type PriceRow struct {
	Hour        int     `json:"hour"`
	PricePerMWh float64 `json:"price_per_mwh"`
}

// EnergyResponse lists the stored hourly production for one date.
type EnergyResponse struct {
	Date       string      `json:"date"`
	EnergyData []EnergyRow `json:"energy_data"`
}

type EnergyRow struct {
	Hour      int     `json:"hour"`
	EnergyKWh float64 `json:"energy_kwh"`
}

// DatesResponse lists which dates have data of each kind.
type DatesResponse struct {
	EnergyDates        []string `json:"energy_dates"`
	PriceDates         []string `json:"price_dates"`
	AnalysisReadyDates []string `json:"analysis_ready_dates"`
}

// StatusResponse acknowledges a state-changing request.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail pairs a stable machine-readable code (NOT_FOUND,
// INVALID_DATE, ...) with a human-readable message. Details carries
// optional structured context such as the offending date.
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
