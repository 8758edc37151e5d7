// Package store persists raw energy samples and price quotes in SQLite.
// Both tables are append-only from the domain's point of view: rows are
// keyed by timestamp and re-fetching a range overwrites rows with
// identical values, so ingestion is idempotent. Aggregates are never
// stored here; they are recomputed from these rows on demand.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/sirupsen/logrus"

	_ "modernc.org/sqlite"

	"solarlog/internal/model"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const lastWriteKey = "last_write"

// Store wraps the SQLite database holding samples and quotes.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
}

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(path string, log *logrus.Entry) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db %s: %w", path, err)
	}

	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(db, migrationFS, "migrations")

	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertEnergySamples stores samples, replacing any existing rows with
// the same timestamp. Negative energy is rejected here so the valuation
// core can assume validated inputs.
func (s *Store) UpsertEnergySamples(ctx context.Context, samples []model.EnergySample) error {
	for _, smp := range samples {
		if smp.EnergyKWh < 0 {
			return fmt.Errorf("energy sample at %s: negative energy %f kWh rejected",
				smp.Timestamp.UTC().Format(time.RFC3339), smp.EnergyKWh)
		}
	}
	if len(samples) == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT OR REPLACE INTO energy_samples (timestamp, energy_kwh) VALUES (?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, smp := range samples {
			if _, err := stmt.ExecContext(ctx, smp.Timestamp.UTC().Unix(), smp.EnergyKWh); err != nil {
				return err
			}
		}
		return s.touchLastWrite(ctx, tx)
	})
}

// UpsertPriceQuotes stores quotes keyed by delivery hour. Negative
// prices are legitimate market outcomes and stored as given.
func (s *Store) UpsertPriceQuotes(ctx context.Context, quotes []model.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT OR REPLACE INTO price_quotes (hour_start, price_per_mwh) VALUES (?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, q := range quotes {
			if _, err := stmt.ExecContext(ctx, q.HourStart().Unix(), q.PricePerMWh); err != nil {
				return err
			}
		}
		return s.touchLastWrite(ctx, tx)
	})
}

// EnergySamplesBetween returns samples with from <= timestamp < to,
// ascending.
func (s *Store) EnergySamplesBetween(ctx context.Context, from, to time.Time) ([]model.EnergySample, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT timestamp, energy_kwh FROM energy_samples WHERE timestamp >= ? AND timestamp < ? ORDER BY timestamp",
		from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.EnergySample
	for rows.Next() {
		var ts int64
		var kwh float64
		if err := rows.Scan(&ts, &kwh); err != nil {
			return nil, err
		}
		out = append(out, model.EnergySample{Timestamp: time.Unix(ts, 0).UTC(), EnergyKWh: kwh})
	}
	return out, rows.Err()
}

// PriceQuotesBetween returns quotes with from <= hour_start < to,
// ascending.
func (s *Store) PriceQuotesBetween(ctx context.Context, from, to time.Time) ([]model.PriceQuote, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT hour_start, price_per_mwh FROM price_quotes WHERE hour_start >= ? AND hour_start < ? ORDER BY hour_start",
		from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PriceQuote
	for rows.Next() {
		var ts int64
		var price float64
		if err := rows.Scan(&ts, &price); err != nil {
			return nil, err
		}
		out = append(out, model.PriceQuote{Timestamp: time.Unix(ts, 0).UTC(), PricePerMWh: price})
	}
	return out, rows.Err()
}

// DatesWithEnergy lists the dates in (year, month) that have at least
// one energy sample, ascending.
func (s *Store) DatesWithEnergy(ctx context.Context, year int, month time.Month) ([]model.Date, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return s.distinctDates(ctx,
		"SELECT DISTINCT date(timestamp, 'unixepoch') FROM energy_samples WHERE timestamp >= ? AND timestamp < ? ORDER BY 1",
		from.Unix(), to.Unix())
}

// AllEnergyDates lists every date with energy data, ascending.
func (s *Store) AllEnergyDates(ctx context.Context) ([]model.Date, error) {
	return s.distinctDates(ctx,
		"SELECT DISTINCT date(timestamp, 'unixepoch') FROM energy_samples ORDER BY 1")
}

// AllPriceDates lists every date with price data, ascending.
func (s *Store) AllPriceDates(ctx context.Context) ([]model.Date, error) {
	return s.distinctDates(ctx,
		"SELECT DISTINCT date(hour_start, 'unixepoch') FROM price_quotes ORDER BY 1")
}

func (s *Store) distinctDates(ctx context.Context, query string, args ...any) ([]model.Date, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := model.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("unexpected date %q in store: %w", raw, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// LastWrite returns the timestamp of the most recent mutation, or the
// zero time for a store that has never been written.
func (s *Store) LastWrite(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = ?", lastWriteKey).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt last-write stamp %q: %w", raw, err)
	}
	return t, nil
}

func (s *Store) touchLastWrite(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		lastWriteKey, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
