// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/database"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

const (
	storeLabel          = "postgres"
	defaultQueryTimeout = 30 * time.Second
)

var _ database.Catalog = (*Store)(nil)

// Store is a catalog backed by PostgreSQL.
type Store struct {
	pool     *pgxpool.Pool
	cfg      config.CatalogConfig
	notifier database.ChangeNotifier
	logger   zerolog.Logger
	now      func() time.Time
}

// Open connects to PostgreSQL, verifies the connection and migrates the
// schema. notifier may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(ctx context.Context, cfg *config.CatalogConfig, notifier database.ChangeNotifier, logger zerolog.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("catalog dsn is required")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse catalog dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	s := &Store{
		pool:     pool,
		cfg:      *cfg,
		notifier: notifier,
		logger:   logger.With().Str("component", "catalog").Str("store", storeLabel).Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}

	if err := s.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate catalog schema: %w", err)
	}

	s.logger.Info().Int32("max_conns", poolCfg.MaxConns).Msg("Postgres catalog ready")
	return s, nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping checks that a connection can be acquired.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases every pooled connection.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// GetRecordCounts returns the count of records in each catalog table.
func (s *Store) GetRecordCounts(ctx context.Context) (database.RecordCounts, error) {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	var counts database.RecordCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM restaurants),
			(SELECT COUNT(*) FROM menus),
			(SELECT COUNT(*) FROM ratings)`).
		Scan(&counts.Restaurants, &counts.Menus, &counts.Ratings)
	if err != nil {
		return database.RecordCounts{}, fmt.Errorf("failed to count records: %w", err)
	}
	return counts, nil
}

func (s *Store) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := s.cfg.QueryTimeout
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, fn)
}

func (s *Store) observe(operation string, start time.Time, err error) {
	metrics.RecordCatalogQuery(storeLabel, operation, time.Since(start), err)
}

// notify publishes a change event after a committed write.
func (s *Store) notify(ctx context.Context, kind models.ChangeKind, restaurantID string) {
	if s.notifier == nil {
		return
	}
	ev := models.NewChangeEvent(kind, restaurantID, "")
	if err := s.notifier.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).
			Str("kind", string(kind)).
			Str("restaurant_id", restaurantID).
			Msg("Failed to publish catalog change")
	}
}

// tags returns a non-nil slice so pgx writes '{}' instead of NULL.
func tags(in []string) []string {
	out := models.NormalizeTags(in)
	if out == nil {
		return []string{}
	}
	return out
}
