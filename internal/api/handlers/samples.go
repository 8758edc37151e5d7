package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"solarlog/internal/api/models"
	"solarlog/internal/data"
	"solarlog/internal/model"
	"solarlog/internal/store"
	"solarlog/internal/valuation"
)

// SamplesHandler serves the raw stored data views and the on-demand
// acquisition endpoints.
type SamplesHandler struct {
	store     *store.Store
	collector *data.Collector
	log       *logrus.Entry
}

func NewSamplesHandler(st *store.Store, collector *data.Collector, log *logrus.Entry) *SamplesHandler {
	return &SamplesHandler{store: st, collector: collector, log: log}
}

// Prices handles GET /api/v1/prices/:date
func (h *SamplesHandler) Prices(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}

	quotes, err := h.store.PriceQuotesBetween(c.Request.Context(), date.Time(), date.Time().AddDate(0, 0, 1))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	if len(quotes) == 0 {
		h.writeNotFound(c, "no prices stored for "+date.String())
		return
	}

	rows := make([]models.PriceRow, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, models.PriceRow{
			Hour:        q.HourStart().Hour(),
			PricePerMWh: q.PricePerMWh,
		})
	}
	c.JSON(http.StatusOK, models.PricesResponse{Date: date.String(), Prices: rows})
}

// Energy handles GET /api/v1/energy/:date
func (h *SamplesHandler) Energy(c *gin.Context) {
	date, ok := h.parseDate(c)
	if !ok {
		return
	}

	samples, err := h.store.EnergySamplesBetween(c.Request.Context(), date.Time(), date.Time().AddDate(0, 0, 1))
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	if len(samples) == 0 {
		h.writeNotFound(c, "no energy data stored for "+date.String())
		return
	}

	hours := valuation.AlignDay(date, samples, nil)
	rows := make([]models.EnergyRow, 0, len(hours))
	for _, hr := range hours {
		rows = append(rows, models.EnergyRow{Hour: hr.Hour, EnergyKWh: hr.EnergyKWh})
	}
	c.JSON(http.StatusOK, models.EnergyResponse{Date: date.String(), EnergyData: rows})
}

// Dates handles GET /api/v1/dates
func (h *SamplesHandler) Dates(c *gin.Context) {
	ctx := c.Request.Context()

	energyDates, err := h.store.AllEnergyDates(ctx)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}
	priceDates, err := h.store.AllPriceDates(ctx)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DatesResponse{
		EnergyDates:        dateStrings(energyDates),
		PriceDates:         dateStrings(priceDates),
		AnalysisReadyDates: dateStrings(intersectDates(energyDates, priceDates)),
	})
}

// FetchEnergy handles POST /api/v1/energy/fetch/:days_back
func (h *SamplesHandler) FetchEnergy(c *gin.Context) {
	daysBack, err := strconv.Atoi(c.Param("days_back"))
	if err != nil || daysBack < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DAYS_BACK",
				Message: "days_back must be a non-negative integer",
			},
		})
		return
	}

	if err := h.collector.RefreshEnergyDay(c.Request.Context(), daysBack); err != nil {
		h.log.WithError(err).WithField("days_back", daysBack).Error("on-demand energy fetch failed")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "ACQUISITION_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "energy data for " + strconv.Itoa(daysBack) + " days ago fetched and stored",
	})
}

// Refresh handles POST /api/v1/refresh
func (h *SamplesHandler) Refresh(c *gin.Context) {
	if err := h.collector.RefreshOnce(c.Request.Context()); err != nil {
		h.log.WithError(err).Error("forced refresh incomplete")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "ACQUISITION_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "price and energy data refreshed",
	})
}

func (h *SamplesHandler) parseDate(c *gin.Context) (model.Date, bool) {
	date, err := model.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: err.Error(),
			},
		})
		return model.Date{}, false
	}
	return date, true
}

func (h *SamplesHandler) writeNotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: msg,
		},
	})
}

func (h *SamplesHandler) writeStoreError(c *gin.Context, err error) {
	h.log.WithError(err).Error("store query failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		},
	})
}

func dateStrings(dates []model.Date) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.String())
	}
	return out
}

// intersectDates returns the dates present in both ascending lists.
func intersectDates(a, b []model.Date) []model.Date {
	inB := make(map[model.Date]bool, len(b))
	for _, d := range b {
		inB[d] = true
	}
	var out []model.Date
	for _, d := range a {
		if inB[d] {
			out = append(out, d)
		}
	}
	return out
}
