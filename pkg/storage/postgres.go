// Package storage persists raw feed observations to Postgres/TimescaleDB.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"tc.com/index-collector/pkg/index"
	"tc.com/index-collector/pkg/logging"
	"tc.com/index-collector/pkg/metrics"
)

// Store writes raw price observations to a Postgres database. When the
// TimescaleDB extension is available the observations table becomes a
// hypertable with a native retention policy; otherwise retention falls back
// to a daily prune job.
type Store struct {
	pool   *pgxpool.Pool
	logger *logging.Logger
	cron   *cron.Cron
}

// PricePoint is one stored observation returned by RecentPrices.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// New connects to the database and initializes the schema.
func New(ctx context.Context, url string, logger *logging.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	poolCfg.MaxConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info("Database connection established")
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS raw_price_data (
			id SERIAL,
			feed_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			price DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (id, timestamp)
		)
	`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	// The (feed_id, timestamp) pair uniquely identifies an observation.
	_, err = s.pool.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_raw_price_data_feed_timestamp
		ON raw_price_data (feed_id, timestamp)
	`)
	if err != nil {
		return fmt.Errorf("create unique index: %w", err)
	}

	// Best effort: convert to a hypertable when TimescaleDB is installed.
	if _, err := s.pool.Exec(ctx, `
		SELECT create_hypertable('raw_price_data', 'timestamp',
		                         chunk_time_interval => INTERVAL '1 day',
		                         if_not_exists => TRUE)
	`); err != nil {
		s.logger.Debug("TimescaleDB not available, using plain table", "error", err)
	}

	return nil
}

// SaveObservation upserts one observation keyed by (feed_id, timestamp).
func (s *Store) SaveObservation(ctx context.Context, obs index.Observation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO raw_price_data (feed_id, timestamp, price)
		VALUES ($1, $2, $3)
		ON CONFLICT (feed_id, timestamp)
		DO UPDATE SET price = EXCLUDED.price
	`, obs.FeedID, obs.Timestamp, obs.Price)
	if err != nil {
		return fmt.Errorf("save observation: %w", err)
	}

	metrics.RecordObservationPersisted(obs.FeedID)
	return nil
}

// SetupRetention enforces a maximum observation age in days. TimescaleDB's
// native retention policy is preferred; without the extension a daily cron
// job prunes expired rows.
func (s *Store) SetupRetention(ctx context.Context, days int) error {
	sql := fmt.Sprintf(
		"SELECT add_retention_policy('raw_price_data', INTERVAL '%d days', if_not_exists => TRUE)",
		days,
	)
	if _, err := s.pool.Exec(ctx, sql); err == nil {
		s.logger.Info("Retention policy set", "days", days)
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc("0 0 * * *", func() {
		s.prune(days)
	})
	if err != nil {
		return fmt.Errorf("schedule retention job: %w", err)
	}
	s.cron.Start()

	s.logger.Info("Retention enforced by daily prune job", "days", days)
	return nil
}

func (s *Store) prune(days int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		"DELETE FROM raw_price_data WHERE timestamp < now() - ($1 || ' days')::interval",
		days,
	)
	if err != nil {
		s.logger.Error("Retention prune failed", "error", err)
		return
	}
	s.logger.Info("Pruned expired observations", "rows", tag.RowsAffected())
}

// RecentPrices returns the most recent stored prices for a feed, newest first.
func (s *Store) RecentPrices(ctx context.Context, feedID string, limit int) ([]PricePoint, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT timestamp, price FROM raw_price_data WHERE feed_id = $1 ORDER BY timestamp DESC LIMIT $2",
		feedID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent prices: %w", err)
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// Close stops the retention job and releases the connection pool.
func (s *Store) Close() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.pool.Close()
}
