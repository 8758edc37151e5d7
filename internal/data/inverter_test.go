package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarlog/internal/model"
)

func testEntry() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newTestInverterClient(serverURL string) *InverterClient {
	c := NewInverterClient("unused", testEntry())
	c.BaseURL = serverURL
	return c
}

func TestFetchDayParsesCurve(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/getjp", r.URL.Path)
		assert.Equal(t, "1", r.Header.Get("X-SL-CSRF-PROTECTION"))
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		// cumulative Wh standings: 100, 300, 600
		fmt.Fprint(w, `{"776":{"0":[
			["08:05",[[1,100]]],
			["08:35",[[1,300]]],
			["09:05",[[1,600]]]
		]}}`)
	}))
	defer srv.Close()

	samples, err := newTestInverterClient(srv.URL).FetchDay(context.Background(), 0)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotBody, "preval=none;"))
	assert.Contains(t, gotBody, `"776":{"0":null}`)

	require.Len(t, samples, 3)
	today := model.DateOf(time.Now().UTC())
	assert.Equal(t, today.HourStart(8).Add(5*time.Minute), samples[0].Timestamp)
	assert.InDelta(t, 0.1, samples[0].EnergyKWh, 1e-9)
	assert.InDelta(t, 0.2, samples[1].EnergyKWh, 1e-9)
	assert.InDelta(t, 0.3, samples[2].EnergyKWh, 1e-9)
}

func TestFetchDaySumsChannels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"776":{"0":[["10:00",[[1,400],[2,600]]]]}}`)
	}))
	defer srv.Close()

	samples, err := newTestInverterClient(srv.URL).FetchDay(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.InDelta(t, 1.0, samples[0].EnergyKWh, 1e-9)
}

func TestFetchDaySkipsCounterDecrease(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"776":{"0":[
			["08:00",[[1,500]]],
			["08:30",[[1,200]]],
			["09:00",[[1,300]]]
		]}}`)
	}))
	defer srv.Close()

	samples, err := newTestInverterClient(srv.URL).FetchDay(context.Background(), 0)
	require.NoError(t, err)

	// the 08:30 reading went backwards and is dropped; 09:00 is the
	// delta against the 08:30 standing
	require.Len(t, samples, 2)
	assert.InDelta(t, 0.5, samples[0].EnergyKWh, 1e-9)
	assert.InDelta(t, 0.1, samples[1].EnergyKWh, 1e-9)
}

func TestFetchDayPastDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"776":{"2":[["12:00",[[1,1000]]]]}}`)
	}))
	defer srv.Close()

	samples, err := newTestInverterClient(srv.URL).FetchDay(context.Background(), 2)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	want := model.DateOf(time.Now().UTC()).AddDays(-2)
	assert.Equal(t, want, model.DateOf(samples[0].Timestamp))
}

func TestFetchDayRejectsNegativeDaysBack(t *testing.T) {
	_, err := newTestInverterClient("http://127.0.0.1:1").FetchDay(context.Background(), -1)
	assert.Error(t, err)
}

func TestFetchDayGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestInverterClient(srv.URL).FetchDay(context.Background(), 0)

	var de *DeviceError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusServiceUnavailable, de.StatusCode)
}

func TestFetchDayBadClockTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"776":{"0":[["25:99",[[1,100]]]]}}`)
	}))
	defer srv.Close()

	_, err := newTestInverterClient(srv.URL).FetchDay(context.Background(), 0)
	assert.Error(t, err)
}
