package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarlog/internal/model"
	"solarlog/internal/store"
)

func samplesRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"), testEntry())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	h := NewSamplesHandler(st, nil, testEntry())
	r := gin.New()
	r.GET("/api/v1/prices/:date", h.Prices)
	r.GET("/api/v1/energy/:date", h.Energy)
	r.GET("/api/v1/dates", h.Dates)
	return r, st
}

func TestPricesEndpoint(t *testing.T) {
	r, st := samplesRouter(t)
	date := model.NewDate(2024, time.June, 1)
	require.NoError(t, st.UpsertPriceQuotes(context.Background(), []model.PriceQuote{
		{Timestamp: date.HourStart(0), PricePerMWh: 81.5},
		{Timestamp: date.HourStart(1), PricePerMWh: -3.2},
	}))

	w, body := doRequest(t, r, http.MethodGet, "/api/v1/prices/2024-06-01")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-06-01", body["date"])
	rows := body["prices"].([]any)
	require.Len(t, rows, 2)
	first := rows[0].(map[string]any)
	assert.Equal(t, float64(0), first["hour"])
	assert.InDelta(t, 81.5, first["price_per_mwh"].(float64), 1e-9)
}

func TestPricesEndpointNotFound(t *testing.T) {
	r, _ := samplesRouter(t)

	w, body := doRequest(t, r, http.MethodGet, "/api/v1/prices/2024-06-01")

	require.Equal(t, http.StatusNotFound, w.Code)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestEnergyEndpointBucketsByHour(t *testing.T) {
	r, st := samplesRouter(t)
	date := model.NewDate(2024, time.June, 1)
	require.NoError(t, st.UpsertEnergySamples(context.Background(), []model.EnergySample{
		{Timestamp: date.HourStart(10).Add(5 * time.Minute), EnergyKWh: 1.5},
		{Timestamp: date.HourStart(10).Add(35 * time.Minute), EnergyKWh: 2.0},
	}))

	w, body := doRequest(t, r, http.MethodGet, "/api/v1/energy/2024-06-01")

	require.Equal(t, http.StatusOK, w.Code)
	rows := body["energy_data"].([]any)
	require.Len(t, rows, 24)
	hour10 := rows[10].(map[string]any)
	assert.InDelta(t, 3.5, hour10["energy_kwh"].(float64), 1e-9)
}

func TestDatesEndpoint(t *testing.T) {
	r, st := samplesRouter(t)
	ctx := context.Background()
	d1 := model.NewDate(2024, time.June, 1)
	d2 := model.NewDate(2024, time.June, 2)
	require.NoError(t, st.UpsertEnergySamples(ctx, []model.EnergySample{
		{Timestamp: d1.HourStart(10), EnergyKWh: 1},
		{Timestamp: d2.HourStart(10), EnergyKWh: 1},
	}))
	require.NoError(t, st.UpsertPriceQuotes(ctx, []model.PriceQuote{
		{Timestamp: d1.HourStart(0), PricePerMWh: 80},
	}))

	w, body := doRequest(t, r, http.MethodGet, "/api/v1/dates")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["energy_dates"].([]any), 2)
	assert.Len(t, body["price_dates"].([]any), 1)
	// analysis needs both kinds of data on the same date
	ready := body["analysis_ready_dates"].([]any)
	require.Len(t, ready, 1)
	assert.Equal(t, "2024-06-01", ready[0])
}
