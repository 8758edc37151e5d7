package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"solarlog/internal/model"
	"solarlog/internal/store"
)

// Collector periodically refreshes the stored sample set: day-ahead
// prices for today and tomorrow, plus inverter production for the most
// recent days. Each source fails independently; a broken gateway does
// not block price updates and vice versa. Failed cycles are logged and
// retried on the next tick, nothing more; missing data stays missing
// until a later cycle fills it.
type Collector struct {
	Inverter *InverterClient
	Prices   *PriceClient
	Store    *store.Store

	// Interval between refresh cycles.
	Interval time.Duration
	// LookbackDays is how many recent days of production are
	// re-fetched each cycle (late meter corrections overwrite earlier
	// rows).
	LookbackDays int

	log *logrus.Entry
}

func NewCollector(inverter *InverterClient, prices *PriceClient, st *store.Store, interval time.Duration, lookbackDays int, log *logrus.Entry) *Collector {
	if interval <= 0 {
		interval = time.Hour
	}
	if lookbackDays <= 0 {
		lookbackDays = 2
	}
	return &Collector{
		Inverter:     inverter,
		Prices:       prices,
		Store:        st,
		Interval:     interval,
		LookbackDays: lookbackDays,
		log:          log,
	}
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (c *Collector) Run(ctx context.Context) {
	if err := c.RefreshOnce(ctx); err != nil {
		c.log.WithError(err).Error("initial refresh incomplete")
	}

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.RefreshOnce(ctx); err != nil {
				c.log.WithError(err).Error("refresh incomplete")
			}
		}
	}
}

// RefreshOnce runs one full refresh cycle. All sources are attempted;
// the returned error joins whatever failed.
func (c *Collector) RefreshOnce(ctx context.Context) error {
	var errs []error

	if err := c.refreshPrices(ctx); err != nil {
		errs = append(errs, fmt.Errorf("prices: %w", err))
	}
	if err := c.refreshEnergy(ctx); err != nil {
		errs = append(errs, fmt.Errorf("energy: %w", err))
	}

	return errors.Join(errs...)
}

// RefreshEnergyDay pulls one specific past day from the inverter on
// demand.
func (c *Collector) RefreshEnergyDay(ctx context.Context, daysBack int) error {
	samples, err := c.Inverter.FetchDay(ctx, daysBack)
	if err != nil {
		return err
	}
	if err := c.Store.UpsertEnergySamples(ctx, samples); err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{
		"days_back": daysBack,
		"samples":   len(samples),
	}).Info("energy data refreshed")
	return nil
}

func (c *Collector) refreshPrices(ctx context.Context) error {
	today := model.DateOf(time.Now().UTC())

	var errs []error
	// Tomorrow's auction results may not be published yet; that is a
	// normal miss, not a failure worth surfacing.
	for _, date := range []model.Date{today, today.AddDays(1)} {
		quotes, err := c.Prices.FetchDayAhead(ctx, date)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", date, err))
			continue
		}
		if len(quotes) == 0 {
			c.log.WithField("date", date.String()).Debug("no quotes published yet")
			continue
		}
		if err := c.Store.UpsertPriceQuotes(ctx, quotes); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", date, err))
			continue
		}
		c.log.WithFields(logrus.Fields{
			"date":   date.String(),
			"quotes": len(quotes),
		}).Info("price quotes refreshed")
	}
	return errors.Join(errs...)
}

func (c *Collector) refreshEnergy(ctx context.Context) error {
	var errs []error
	for daysBack := 0; daysBack < c.LookbackDays; daysBack++ {
		if err := c.RefreshEnergyDay(ctx, daysBack); err != nil {
			errs = append(errs, fmt.Errorf("%d days back: %w", daysBack, err))
		}
	}
	return errors.Join(errs...)
}
