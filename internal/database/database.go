// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/models"
)

// MemoryPath opens a catalog that lives only in process memory.
const MemoryPath = ":memory:"

const storeLabel = "duckdb"

// ChangeNotifier announces catalog changes. *eventprocessor.Bus satisfies it.
type ChangeNotifier interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// DB wraps the DuckDB connection and provides catalog access methods.
type DB struct {
	conn     *sql.DB
	cfg      config.CatalogConfig
	notifier ChangeNotifier
	logger   zerolog.Logger
	now      func() time.Time

	maxConflictRetries int
	conflictDelay      time.Duration
}

// New opens the catalog and initializes its schema. notifier may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.CatalogConfig, notifier ChangeNotifier, logger zerolog.Logger) (*DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path is required")
	}

	if cfg.Path != MemoryPath {
		// 0750 per gosec G301
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", connectionString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:               conn,
		cfg:                *cfg,
		notifier:           notifier,
		logger:             logger.With().Str("component", "catalog").Str("store", storeLabel).Logger(),
		now:                func() time.Time { return time.Now().UTC() },
		maxConflictRetries: 3,
		conflictDelay:      20 * time.Millisecond,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

// connectionString builds the DuckDB DSN. Extension auto-install is disabled
// so startup never blocks on the network.
func connectionString(cfg *config.CatalogConfig) string {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	params := []string{
		"access_mode=read_write",
		fmt.Sprintf("threads=%d", threads),
		"autoinstall_known_extensions=false",
		"autoload_known_extensions=false",
	}
	if cfg.MaxMemory != "" {
		params = append(params, "max_memory="+cfg.MaxMemory)
	}
	return cfg.Path + "?" + strings.Join(params, "&")
}

// Conn returns the underlying SQL connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if db.cfg.Path != MemoryPath {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Checkpoint(ctx); err != nil {
			db.logger.Warn().Err(err).Msg("Failed to checkpoint database before close")
		}
		cancel()
	}
	return db.conn.Close()
}

// initialize creates tables and applies pending migrations.
func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}
	return db.runVersionedMigrations()
}

// observe records a catalog query in metrics.
func (db *DB) observe(operation string, start time.Time, err error) {
	metrics.RecordCatalogQuery(storeLabel, operation, time.Since(start), err)
}

// notify publishes a change event after a committed write.
func (db *DB) notify(ctx context.Context, kind models.ChangeKind, restaurantID string) {
	if db.notifier == nil {
		return
	}
	ev := models.NewChangeEvent(kind, restaurantID, "")
	if err := db.notifier.Publish(ctx, ev); err != nil {
		db.logger.Warn().Err(err).
			Str("kind", string(kind)).
			Str("restaurant_id", restaurantID).
			Msg("Failed to publish catalog change")
	}
}
