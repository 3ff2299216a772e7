// Package store owns the observations table: idempotent batched upserts and
// the read paths the sync, analysis, and quality services run on.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/macropulse/macropulse-go/internal/models"
	"github.com/macropulse/macropulse-go/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Schema is the owned relational schema. Upserts rely on the unique
// constraint for conflict resolution instead of application-level locking.
const Schema = `
CREATE TABLE IF NOT EXISTS observations (
    id          BIGSERIAL PRIMARY KEY,
    series_code TEXT        NOT NULL,
    source      TEXT        NOT NULL DEFAULT 'FRED',
    date        DATE        NOT NULL,
    value       NUMERIC     NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uix_observations_series_date UNIQUE (series_code, date)
);
CREATE INDEX IF NOT EXISTS idx_observations_series_date ON observations (series_code, date DESC);
`

const upsertSQL = `
INSERT INTO observations (series_code, source, date, value, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (series_code, date)
DO UPDATE SET value = EXCLUDED.value, source = EXCLUDED.source, updated_at = now()`

// DB is the narrow database surface the store needs. *pgxpool.Pool
// satisfies it in production and pgxmock satisfies it in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// ObservationStore reads and writes time-series points keyed by
// (series_code, date).
type ObservationStore struct {
	db        DB
	batchSize int
	logger    *logrus.Logger
}

// NewObservationStore creates a store committing upserts in batches of
// batchSize (default 50 when non-positive).
func NewObservationStore(db DB, batchSize int, logger *logrus.Logger) *ObservationStore {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ObservationStore{db: db, batchSize: batchSize, logger: logger}
}

// EnsureSchema creates the observations table when absent.
func (s *ObservationStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return utils.NewError(utils.KindStorage, "", "store", "failed to ensure schema", err)
	}
	return nil
}

// Upsert writes observations using insert-or-update on the (series_code,
// date) unique key, committing one transaction per batch so a mid-run
// failure only loses the uncommitted tail. The returned count is the number
// of rows sent in committed batches; a no-op upsert of an unchanged value
// still counts. Applying the same batch twice leaves the table unchanged.
func (s *ObservationStore) Upsert(ctx context.Context, observations []models.Observation) (int, error) {
	committed := 0

	for start := 0; start < len(observations); start += s.batchSize {
		end := start + s.batchSize
		if end > len(observations) {
			end = len(observations)
		}
		batch := observations[start:end]

		if err := s.upsertBatch(ctx, batch); err != nil {
			series := ""
			if len(batch) > 0 {
				series = batch[0].SeriesCode
			}
			return committed, utils.NewError(utils.KindStorage, series, "store",
				fmt.Sprintf("upsert failed after %d committed rows", committed), err)
		}
		committed += len(batch)
	}

	return committed, nil
}

// upsertBatch writes one batch atomically.
func (s *ObservationStore) upsertBatch(ctx context.Context, batch []models.Observation) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op once the transaction is committed.
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			s.logger.WithError(rbErr).Warn("Rollback failed")
		}
	}()

	for _, obs := range batch {
		if _, err := tx.Exec(ctx, upsertSQL, obs.SeriesCode, obs.Source, obs.Date, obs.Value); err != nil {
			return fmt.Errorf("failed to upsert %s@%s: %w", obs.SeriesCode, obs.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// ReadRange returns observations for a series ordered by date ascending.
// Zero-valued since/until leave that bound open.
func (s *ObservationStore) ReadRange(ctx context.Context, code string, since, until time.Time) ([]models.Observation, error) {
	query := `SELECT source, date, value::text, created_at, updated_at FROM observations WHERE series_code = $1`
	args := []interface{}{code}

	if !since.IsZero() {
		args = append(args, since)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !until.IsZero() {
		args = append(args, until)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date ASC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, utils.NewError(utils.KindStorage, code, "store", "failed to read observations", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var (
			obs      models.Observation
			valueStr string
		)
		obs.SeriesCode = code
		if err := rows.Scan(&obs.Source, &obs.Date, &valueStr, &obs.CreatedAt, &obs.UpdatedAt); err != nil {
			return nil, utils.NewError(utils.KindStorage, code, "store", "failed to scan observation", err)
		}
		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return nil, utils.NewError(utils.KindStorage, code, "store",
				fmt.Sprintf("stored value %q is not numeric", valueStr), err)
		}
		obs.Value = value
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewError(utils.KindStorage, code, "store", "failed to iterate observations", err)
	}

	return observations, nil
}

// MaxDate returns the most recent stored date for a series, or nil when the
// series has no rows. It always reads fresh from the store so the watermark
// never misses a just-committed row.
func (s *ObservationStore) MaxDate(ctx context.Context, code string) (*time.Time, error) {
	var maxDate *time.Time
	err := s.db.QueryRow(ctx, `SELECT MAX(date) FROM observations WHERE series_code = $1`, code).Scan(&maxDate)
	if err != nil {
		return nil, utils.NewError(utils.KindStorage, code, "store", "failed to read watermark", err)
	}
	return maxDate, nil
}

// LatestWrite returns the newest observation date and its updated_at
// timestamp, or (nil, nil) when the series has no rows.
func (s *ObservationStore) LatestWrite(ctx context.Context, code string) (*time.Time, *time.Time, error) {
	var (
		date      time.Time
		updatedAt time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT date, updated_at FROM observations WHERE series_code = $1 ORDER BY date DESC LIMIT 1`,
		code).Scan(&date, &updatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, utils.NewError(utils.KindStorage, code, "store", "failed to read latest write", err)
	}
	return &date, &updatedAt, nil
}

// Dates returns every stored date for a series on or after since, ascending.
func (s *ObservationStore) Dates(ctx context.Context, code string, since time.Time) ([]time.Time, error) {
	rows, err := s.db.Query(ctx,
		`SELECT date FROM observations WHERE series_code = $1 AND date >= $2 ORDER BY date ASC`,
		code, since)
	if err != nil {
		return nil, utils.NewError(utils.KindStorage, code, "store", "failed to read dates", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, utils.NewError(utils.KindStorage, code, "store", "failed to scan date", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewError(utils.KindStorage, code, "store", "failed to iterate dates", err)
	}
	return dates, nil
}

// Stats returns summary statistics for a series. Count is zero when the
// series has no rows, with the remaining fields nil.
func (s *ObservationStore) Stats(ctx context.Context, code string) (*models.SeriesStats, error) {
	stats := &models.SeriesStats{SeriesCode: code}
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), MIN(date), MAX(date), MIN(value)::float8, MAX(value)::float8, AVG(value)::float8
		 FROM observations WHERE series_code = $1`,
		code).Scan(&stats.Count, &stats.FirstDate, &stats.LastDate, &stats.MinValue, &stats.MaxValue, &stats.AvgValue)
	if err != nil {
		return nil, utils.NewError(utils.KindStorage, code, "store", "failed to read statistics", err)
	}
	return stats, nil
}
