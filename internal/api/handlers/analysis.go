package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"solarlog/internal/api/models"
	"solarlog/internal/model"
	"solarlog/internal/valuation"
)

// AnalysisHandler serves the daily and monthly valuation views.
type AnalysisHandler struct {
	svc *valuation.Service
	log *logrus.Entry
}

func NewAnalysisHandler(svc *valuation.Service, log *logrus.Entry) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, log: log}
}

// Daily handles GET /api/v1/analysis/daily/:date
func (h *AnalysisHandler) Daily(c *gin.Context) {
	date, err := model.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: err.Error(),
			},
		})
		return
	}

	sum, err := h.svc.Daily(c.Request.Context(), date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dailyResponse(sum))
}

// Monthly handles GET /api/v1/analysis/monthly/:month (YYYY-MM)
func (h *AnalysisHandler) Monthly(c *gin.Context) {
	month, err := time.Parse("2006-01", c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_MONTH",
				Message: "invalid month (expected YYYY-MM)",
			},
		})
		return
	}

	res, err := h.svc.Monthly(c.Request.Context(), month.Year(), month.Month())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, monthlyResponse(res))
}

func (h *AnalysisHandler) writeServiceError(c *gin.Context, err error) {
	var pre *valuation.PreconditionError
	switch {
	case errors.Is(err, valuation.ErrNoData):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: err.Error(),
			},
		})
	case errors.As(err, &pre):
		h.log.WithError(err).Error("hourly bucket set malformed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "PRECONDITION_VIOLATION",
				Message: err.Error(),
				Details: map[string]interface{}{
					"date": pre.Date.String(),
				},
			},
		})
	default:
		h.log.WithError(err).Error("analysis request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INTERNAL_ERROR",
				Message: err.Error(),
			},
		})
	}
}

func dailyResponse(s *model.DailySummary) models.DailyResponse {
	rows := make([]models.HourlyRow, 0, len(s.Hours))
	for _, hr := range s.Hours {
		row := models.HourlyRow{
			Hour:      hr.Hour,
			EnergyKWh: hr.EnergyKWh,
		}
		if hr.HasPrice {
			p := hr.PricePerMWh
			row.PricePerMWh = &p
		}
		if hr.HasValue {
			v := hr.ValueEUR
			row.Value = &v
		}
		rows = append(rows, row)
	}

	return models.DailyResponse{
		Date: s.Date.String(),
		Summary: models.DailySummary{
			TotalEnergyKWh:           s.TotalEnergyKWh,
			TotalEnergyMWh:           s.TotalEnergyKWh / 1000,
			TotalValue:               s.TotalValueEUR,
			ArithmeticAvgPricePerMWh: s.AvgPricePerMWh,
		},
		HourlyData: rows,
	}
}

func monthlyResponse(r *model.MonthlyResult) models.MonthlyResponse {
	if r.Status == model.MonthlyNoData {
		return models.MonthlyResponse{
			Status:  string(r.Status),
			Message: r.Message,
		}
	}

	s := r.Summary
	days := make(map[string]models.MonthlyDay, len(s.Days))
	for date, d := range s.Days {
		days[date.String()] = models.MonthlyDay{
			TotalValue:          d.Summary.TotalValueEUR,
			TotalEnergyMWh:      d.TotalEnergyMWh,
			AvgWorkingHourPrice: d.AvgWorkingHourPrice,
			WorkingHours:        d.WorkingHours,
		}
	}

	return models.MonthlyResponse{
		Status: string(r.Status),
		MonthSummary: &models.MonthSummary{
			TotalValue:          s.TotalValueEUR,
			TotalEnergyMWh:      s.TotalEnergyMWh,
			AvgWorkingHourPrice: s.AvgWorkingHourPrice,
			DaysWithData:        s.DaysWithData,
			TotalWorkingHours:   s.TotalWorkingHours,
		},
		Days: days,
	}
}
