package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"solarlog/internal/model"
)

// getjp query for the production curve of one past day. The gateway's
// protocol is positional: object 776 keyed by days-before-today returns
// the day's interval curve, the other keys request device status fields
// that must be present for the request to be accepted.
const inverterQueryTemplate = `{"141":{"32000":{"108":null,"118":null,"119":null,"145":null,"149":null,"158":null}},"152":null,"161":null,"162":null,"480":null,"776":{"%d":null},"777":{"1":null},"801":{"100":null}}`

// InverterClient speaks the Solar-Log gateway's /getjp JSON protocol.
type InverterClient struct {
	BaseURL string
	Client  *http.Client

	log *logrus.Entry
}

// NewInverterClient creates a client for the gateway at host (IP or
// hostname, no scheme).
func NewInverterClient(host string, log *logrus.Entry) *InverterClient {
	return &InverterClient{
		BaseURL: "http://" + host,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// DeviceError represents a failed exchange with the inverter gateway.
type DeviceError struct {
	StatusCode int
	Message    string
}

func (e *DeviceError) Error() string {
	return e.Message
}

// intervalEntry is one row of the day curve: ["HH:MM", [[ch, wh], ...]].
// The second values of the pairs are cumulative Wh counters per
// channel; their sum is the total standing at that time of day.
type intervalEntry struct {
	Time  string
	Pairs [][]float64
}

func (e *intervalEntry) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("interval entry has %d elements, expected 2", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Time); err != nil {
		return fmt.Errorf("interval timestamp: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Pairs); err != nil {
		return fmt.Errorf("interval channel pairs: %w", err)
	}
	return nil
}

type dayCurveResponse struct {
	Curves map[string][]intervalEntry `json:"776"`
}

// FetchDay retrieves the production curve for the day daysBack days
// before today and reduces the gateway's cumulative Wh counters to
// incremental EnergySamples at the curve's native resolution.
func (c *InverterClient) FetchDay(ctx context.Context, daysBack int) ([]model.EnergySample, error) {
	if daysBack < 0 {
		return nil, fmt.Errorf("daysBack must be >= 0, got %d", daysBack)
	}

	payload := "preval=none;" + fmt.Sprintf(inverterQueryTemplate, daysBack)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/getjp", strings.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-SL-CSRF-PROTECTION", "1")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"status":    resp.StatusCode,
		"days_back": daysBack,
		"duration":  time.Since(start),
	}).Debug("inverter gateway response")

	if resp.StatusCode != http.StatusOK {
		return nil, &DeviceError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("gateway returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	var parsed dayCurveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}

	entries := parsed.Curves[strconv.Itoa(daysBack)]
	date := model.DateOf(time.Now().UTC()).AddDays(-daysBack)
	return c.curveToSamples(date, entries)
}

// curveToSamples converts the day's cumulative curve into incremental
// samples. The counter resets at midnight, so the first entry's
// standing is itself the first increment.
func (c *InverterClient) curveToSamples(date model.Date, entries []intervalEntry) ([]model.EnergySample, error) {
	samples := make([]model.EnergySample, 0, len(entries))
	prevTotalWh := 0.0

	for _, e := range entries {
		hour, minute, err := parseClock(e.Time)
		if err != nil {
			return nil, fmt.Errorf("interval %q: %w", e.Time, err)
		}

		totalWh := 0.0
		for _, pair := range e.Pairs {
			if len(pair) != 2 {
				return nil, fmt.Errorf("interval %q: channel pair has %d elements", e.Time, len(pair))
			}
			totalWh += pair[1]
		}

		deltaWh := totalWh - prevTotalWh
		prevTotalWh = totalWh
		if deltaWh < 0 {
			// Counter went backwards mid-day; drop the reading rather
			// than ingest a negative sample.
			c.log.WithFields(logrus.Fields{
				"date": date.String(),
				"time": e.Time,
			}).Warn("inverter counter decreased, skipping interval")
			continue
		}

		samples = append(samples, model.EnergySample{
			Timestamp: time.Date(date.Year, date.Month, date.Day, hour, minute, 0, 0, time.UTC),
			EnergyKWh: deltaWh / 1000,
		})
	}

	return samples, nil
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM clock time")
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour %q", parts[0])
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute %q", parts[1])
	}
	return hour, minute, nil
}
