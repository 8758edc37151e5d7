package data

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"solarlog/internal/model"
)

// PriceClient fetches day-ahead market prices from an ENTSO-E style
// transparency API. The response is a Publication_MarketDocument;
// each Point carries a price for one delivery hour, positioned
// relative to its period's start.
type PriceClient struct {
	BaseURL string
	Token   string
	// Area is the bidding zone EIC code, e.g. "10YHU-MAVIR----U" for
	// the Hungarian (HUPX) zone.
	Area   string
	Client *http.Client

	log *logrus.Entry
}

// NewPriceClient creates a price client. If baseURL is empty the public
// transparency endpoint is used.
func NewPriceClient(baseURL, token, area string, log *logrus.Entry) *PriceClient {
	if baseURL == "" {
		baseURL = "https://web-api.tp.entsoe.eu"
	}
	return &PriceClient{
		BaseURL: baseURL,
		Token:   token,
		Area:    area,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// PriceAPIError represents an error response from the price API.
type PriceAPIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *PriceAPIError) Error() string {
	return e.Message
}

// Document shapes; only the fields we consume.
type publicationDocument struct {
	XMLName    xml.Name         `xml:"Publication_MarketDocument"`
	TimeSeries []priceSeries    `xml:"TimeSeries"`
}

type priceSeries struct {
	Periods []pricePeriod `xml:"Period"`
}

type pricePeriod struct {
	TimeInterval priceInterval `xml:"timeInterval"`
	Resolution   string        `xml:"resolution"`
	Points       []pricePoint  `xml:"Point"`
}

type priceInterval struct {
	Start string `xml:"start"`
	End   string `xml:"end"`
}

type pricePoint struct {
	Position int     `xml:"position"`
	Price    float64 `xml:"price.amount"`
}

const periodStampLayout = "2006-01-02T15:04Z"

// FetchDayAhead returns the hourly quotes for one delivery day. Missing
// hours are simply absent from the result; the valuation core treats
// them as hours without a price.
func (c *PriceClient) FetchDayAhead(ctx context.Context, date model.Date) ([]model.PriceQuote, error) {
	dayStart := date.Time()
	dayEnd := dayStart.AddDate(0, 0, 1)

	u, err := url.Parse(c.BaseURL + "/api")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("documentType", "A44")
	q.Set("in_Domain", c.Area)
	q.Set("out_Domain", c.Area)
	q.Set("periodStart", dayStart.Format("200601021504"))
	q.Set("periodEnd", dayEnd.Format("200601021504"))
	q.Set("securityToken", c.Token)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"date":     date.String(),
		"area":     c.Area,
		"duration": time.Since(start),
	}).Debug("price API response")

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &PriceAPIError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "price API rejected the security token",
		}
	case http.StatusTooManyRequests:
		return nil, &PriceAPIError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    "price API rate limit exceeded",
		}
	default:
		return nil, &PriceAPIError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("price API returned status %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read price response: %w", err)
	}

	var doc publicationDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode price document: %w", err)
	}

	return quotesFromDocument(&doc)
}

func quotesFromDocument(doc *publicationDocument) ([]model.PriceQuote, error) {
	var quotes []model.PriceQuote
	for _, ts := range doc.TimeSeries {
		for _, p := range ts.Periods {
			start, err := time.Parse(periodStampLayout, p.TimeInterval.Start)
			if err != nil {
				return nil, fmt.Errorf("period start %q: %w", p.TimeInterval.Start, err)
			}
			for _, pt := range p.Points {
				if pt.Position < 1 {
					return nil, fmt.Errorf("point position %d out of range", pt.Position)
				}
				quotes = append(quotes, model.PriceQuote{
					Timestamp:   start.UTC().Add(time.Duration(pt.Position-1) * time.Hour),
					PricePerMWh: pt.Price,
				})
			}
		}
	}
	return quotes, nil
}
