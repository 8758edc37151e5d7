package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"solarlog/internal/model"
)

// SampleSource is the read side of the persistence layer. Reads must
// observe a consistent snapshot of the sample set for the requested
// range; the valuation core performs no other I/O.
type SampleSource interface {
	EnergySamplesBetween(ctx context.Context, from, to time.Time) ([]model.EnergySample, error)
	PriceQuotesBetween(ctx context.Context, from, to time.Time) ([]model.PriceQuote, error)
	// DatesWithEnergy lists the dates in (year, month) that have at
	// least one stored energy sample, ascending.
	DatesWithEnergy(ctx context.Context, year int, month time.Month) ([]model.Date, error)
	// LastWrite is the timestamp of the most recent mutation of the
	// sample set; it keys cache invalidation.
	LastWrite(ctx context.Context) (time.Time, error)
}

// Service exposes the daily and monthly queries to the API layer,
// backed by the engine and an invalidation-aware summary cache.
type Service struct {
	src    SampleSource
	engine *Engine
	cache  *summaryCache
	log    *logrus.Entry
}

func NewService(src SampleSource, engine *Engine, log *logrus.Entry) *Service {
	return &Service{
		src:    src,
		engine: engine,
		cache:  newSummaryCache(),
		log:    log,
	}
}

// Daily returns the summary for one date. A date without any stored
// energy samples yields ErrNoData, distinguished from a date with
// samples but zero production.
func (s *Service) Daily(ctx context.Context, date model.Date) (*model.DailySummary, error) {
	asOf, err := s.src.LastWrite(ctx)
	if err != nil {
		return nil, fmt.Errorf("read last-write stamp: %w", err)
	}
	if cached, ok := s.cache.getDaily(asOf, date); ok {
		return cached, nil
	}

	from := date.Time()
	to := from.AddDate(0, 0, 1)

	samples, err := s.src.EnergySamplesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load energy samples for %s: %w", date, err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("energy for %s: %w", date, ErrNoData)
	}

	quotes, err := s.src.PriceQuotesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load price quotes for %s: %w", date, err)
	}

	sum, err := s.engine.BuildDay(date, samples, quotes)
	if err != nil {
		s.log.WithField("date", date.String()).WithError(err).Error("daily summary failed")
		return nil, err
	}

	s.cache.putDaily(asOf, date, sum)
	return sum, nil
}

// Monthly returns the tagged monthly result for (year, month). Days
// that fail individually are skipped with a warning rather than failing
// the whole month; a month with zero qualifying days is the NoData
// variant, not an error.
func (s *Service) Monthly(ctx context.Context, year int, month time.Month) (*model.MonthlyResult, error) {
	asOf, err := s.src.LastWrite(ctx)
	if err != nil {
		return nil, fmt.Errorf("read last-write stamp: %w", err)
	}
	if cached, ok := s.cache.getMonthly(asOf, year, month); ok {
		return cached, nil
	}

	dates, err := s.src.DatesWithEnergy(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("list dates for %04d-%02d: %w", year, int(month), err)
	}

	days := make([]model.DailySummary, 0, len(dates))
	for _, date := range dates {
		sum, err := s.Daily(ctx, date)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.WithField("date", date.String()).WithError(err).Warn("skipping day in monthly summary")
			continue
		}
		days = append(days, *sum)
	}

	res := s.engine.SummarizeMonth(year, month, days)
	s.cache.putMonthly(asOf, year, month, res)
	return res, nil
}
