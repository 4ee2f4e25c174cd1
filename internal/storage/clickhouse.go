package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/cask-indexer/internal/config"
)

// ClickHouseDB wraps the ClickHouse connection
type ClickHouseDB struct {
	conn driver.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(cfg *config.ClickHouseConfig) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      10 * time.Second,
		MaxOpenConns:     10,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Close closes the ClickHouse connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying ClickHouse connection
func (db *ClickHouseDB) Conn() driver.Conn {
	return db.conn
}

// Ping checks if the database is reachable
func (db *ClickHouseDB) Ping(ctx context.Context) error {
	return db.conn.Ping(ctx)
}

// Exec executes a query without returning rows
func (db *ClickHouseDB) Exec(ctx context.Context, query string, args ...interface{}) error {
	return db.conn.Exec(ctx, query, args...)
}

// Archive table DDL. ReplacingMergeTree keyed on (chain, id) makes
// re-appends after a restart collapse to one row, matching the
// overwrite-identical semantics of the primary store.
var archiveDDL = []string{
	`CREATE TABLE IF NOT EXISTS archive_transactions (
		chain String,
		id String,
		type String,
		timestamp Int64,
		consumer String,
		provider String,
		asset_address String,
		amount String
	) ENGINE = ReplacingMergeTree()
	ORDER BY (chain, id)`,
	`CREATE TABLE IF NOT EXISTS archive_subscription_events (
		chain String,
		id String,
		type String,
		txn_id String,
		timestamp Int64,
		consumer String,
		provider String,
		subscription_id String,
		plan_id UInt32
	) ENGINE = ReplacingMergeTree()
	ORDER BY (chain, id)`,
	`CREATE TABLE IF NOT EXISTS archive_dca_events (
		chain String,
		id String,
		type String,
		dca_id String,
		txn_id String,
		timestamp Int64,
		user_id String,
		asset_address String,
		amount String,
		buy_qty String,
		fee String,
		skip_reason String
	) ENGINE = ReplacingMergeTree()
	ORDER BY (chain, id)`,
	`CREATE TABLE IF NOT EXISTS archive_chainlink_topup_events (
		chain String,
		id String,
		type String,
		topup_id String,
		target_id String,
		registry String,
		topup_type String,
		txn_id String,
		timestamp Int64,
		user_id String,
		amount String,
		buy_qty String,
		fee String,
		skip_reason String
	) ENGINE = ReplacingMergeTree()
	ORDER BY (chain, id)`,
}

// EnsureArchiveTables creates the archive tables if missing.
func (db *ClickHouseDB) EnsureArchiveTables(ctx context.Context) error {
	for _, ddl := range archiveDDL {
		if err := db.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create archive table: %w", err)
		}
	}
	return nil
}
