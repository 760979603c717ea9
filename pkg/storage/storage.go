package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/owidviz/covidscope/pkg/loader"
	"github.com/owidviz/covidscope/pkg/observation"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS observations (
  dataset                 TEXT NOT NULL,
  seq                     INTEGER NOT NULL,
  date                    TEXT NOT NULL,
  iso_code                TEXT NOT NULL,
  location                TEXT NOT NULL,
  new_cases               REAL NOT NULL DEFAULT 0,
  new_cases_smoothed      REAL NOT NULL DEFAULT 0,
  new_cases_per_million   REAL NOT NULL DEFAULT 0,
  new_deaths              REAL NOT NULL DEFAULT 0,
  daily_people_vaccinated REAL,
  total_boosters          REAL,
  PRIMARY KEY (dataset, seq)
);
CREATE INDEX IF NOT EXISTS idx_observations_location ON observations(dataset, location);
CREATE TABLE IF NOT EXISTS loads (
  dataset   TEXT PRIMARY KEY,
  source    TEXT NOT NULL,
  loaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  row_count INTEGER NOT NULL,
  dropped   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS boundaries (
  id        INTEGER PRIMARY KEY CHECK (id = 1),
  source    TEXT NOT NULL,
  loaded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  body      BLOB NOT NULL
);
`

// DB caches the fetched datasets in sqlite. It implements loader.Provider,
// so a session can run entirely from the cache.
type DB struct {
	sql *sql.DB
}

var _ loader.Provider = (*DB)(nil)

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

// New wraps an already open database whose schema is in place.
func New(db *sql.DB) *DB {
	return &DB{sql: db}
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// ReplaceDataset swaps the stored rows of dataset for batch in one
// transaction. Readers see either the old rows or the new ones.
func (d *DB) ReplaceDataset(ctx context.Context, dataset loader.Dataset, source string, batch *loader.Batch) (err error) {
	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM observations WHERE dataset = ?", string(dataset)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO observations(dataset, seq, date, iso_code, location, new_cases, new_cases_smoothed, new_cases_per_million, new_deaths, daily_people_vaccinated, total_boosters) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, o := range batch.Observations {
		_, err = stmt.ExecContext(ctx, string(dataset), i, o.Date.Format(dateLayout), o.Code, o.Entity,
			o.NewCases, o.NewCasesSmoothed, o.NewCasesPerMillion, o.NewDeaths,
			nullIfNil(o.DailyVaccinated), nullIfNil(o.TotalBoosters))
		if err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO loads(dataset, source, loaded_at, row_count, dropped) VALUES(?,?,CURRENT_TIMESTAMP,?,?)
ON CONFLICT(dataset) DO UPDATE SET source = excluded.source, loaded_at = excluded.loaded_at, row_count = excluded.row_count, dropped = excluded.dropped`,
		string(dataset), source, batch.Rows, batch.Dropped)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Observations returns a dataset in the order it was stored.
func (d *DB) Observations(ctx context.Context, dataset loader.Dataset) (*loader.Batch, error) {
	load, err := d.load(ctx, dataset)
	if err != nil {
		return nil, err
	}

	rows, err := d.sql.QueryContext(ctx, `SELECT date, iso_code, location, new_cases, new_cases_smoothed, new_cases_per_million, new_deaths, daily_people_vaccinated, total_boosters FROM observations WHERE dataset = ? ORDER BY seq`, string(dataset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batch := &loader.Batch{Rows: load.Rows, Dropped: load.Dropped}
	for rows.Next() {
		var (
			o          observation.Observation
			date       string
			vacc, boos sql.NullFloat64
		)
		if err := rows.Scan(&date, &o.Code, &o.Entity, &o.NewCases, &o.NewCasesSmoothed, &o.NewCasesPerMillion, &o.NewDeaths, &vacc, &boos); err != nil {
			return nil, err
		}
		if o.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("stored date %q: %w", date, err)
		}
		o.DailyVaccinated = floatIfValid(vacc)
		o.TotalBoosters = floatIfValid(boos)
		batch.Observations = append(batch.Observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batch, nil
}

func (d *DB) SaveBoundaries(ctx context.Context, source string, body []byte) error {
	_, err := d.sql.ExecContext(ctx, `INSERT INTO boundaries(id, source, loaded_at, body) VALUES(1,?,CURRENT_TIMESTAMP,?)
ON CONFLICT(id) DO UPDATE SET source = excluded.source, loaded_at = excluded.loaded_at, body = excluded.body`, source, body)
	return err
}

func (d *DB) Boundaries(ctx context.Context) ([]byte, error) {
	var body []byte
	err := d.sql.QueryRowContext(ctx, "SELECT body FROM boundaries WHERE id = 1").Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("boundaries: %w", ErrNotLoaded)
	}
	return body, err
}

func (d *DB) load(ctx context.Context, dataset loader.Dataset) (Load, error) {
	l := Load{Dataset: dataset}
	var loadedAt string
	err := d.sql.QueryRowContext(ctx, "SELECT source, loaded_at, row_count, dropped FROM loads WHERE dataset = ?", string(dataset)).
		Scan(&l.Source, &loadedAt, &l.Rows, &l.Dropped)
	if errors.Is(err, sql.ErrNoRows) {
		return l, fmt.Errorf("%s: %w", dataset, ErrNotLoaded)
	}
	if err != nil {
		return l, err
	}
	l.LoadedAt = parseTimestamp(loadedAt)
	return l, nil
}

// ListLoads returns the last load of every stored dataset.
func (d *DB) ListLoads(ctx context.Context) ([]Load, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT dataset, source, loaded_at, row_count, dropped FROM loads ORDER BY dataset")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []Load
	for rows.Next() {
		var l Load
		var dataset, loadedAt string
		if err := rows.Scan(&dataset, &l.Source, &loadedAt, &l.Rows, &l.Dropped); err != nil {
			return nil, err
		}
		l.Dataset = loader.Dataset(dataset)
		l.LoadedAt = parseTimestamp(loadedAt)
		loads = append(loads, l)
	}
	return loads, rows.Err()
}

func (d *DB) GetStats(ctx context.Context) ([]DatasetStats, error) {
	query := `
		SELECT
			o.dataset,
			COUNT(*),
			COUNT(DISTINCT o.location),
			MIN(o.date),
			MAX(o.date),
			l.loaded_at
		FROM
			observations o
			JOIN loads l ON l.dataset = o.dataset
		GROUP BY
			o.dataset
		ORDER BY
			o.dataset;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []DatasetStats
	for rows.Next() {
		var s DatasetStats
		var dataset, first, last, loadedAt string
		if err := rows.Scan(&dataset, &s.Observations, &s.Entities, &first, &last, &loadedAt); err != nil {
			return nil, err
		}
		s.Dataset = loader.Dataset(dataset)
		s.First, _ = time.Parse(dateLayout, first)
		s.Last, _ = time.Parse(dateLayout, last)
		s.LoadedAt = parseTimestamp(loadedAt)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// parseTimestamp reads SQLite CURRENT_TIMESTAMP values, falling back to
// RFC3339 as written by some drivers.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func nullIfNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func floatIfValid(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return observation.Float(v.Float64)
}
