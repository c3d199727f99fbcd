package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/logistiq/caseledger/backend-go/internal/config"
)

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

var (
	dbInstance *DB
	once       sync.Once
)

// NewDB creates a new database connection pool
func NewDB(cfg *config.DatabaseConfig) (*DB, error) {
	var err error
	once.Do(func() {
		connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

		var db *sqlx.DB
		db, err = sqlx.Connect("postgres", connStr)
		if err != nil {
			return
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		dbInstance = &DB{
			DB:  db,
			sem: semaphore.NewWeighted(10), // Limit to 10 concurrent operations
		}
	})

	return dbInstance, err
}

// WithTx executes a function within a transaction
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// EnsureSchema creates the ledger and case tables when they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS warehouse_ledgers (
			warehouse TEXT NOT NULL,
			month CHAR(7) NOT NULL,
			inbound INT NOT NULL DEFAULT 0,
			outbound INT NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0,
			PRIMARY KEY (warehouse, month)
		)`,
		`CREATE TABLE IF NOT EXISTS site_ledgers (
			site TEXT NOT NULL,
			month CHAR(7) NOT NULL,
			inbound INT NOT NULL DEFAULT 0,
			cumulative INT NOT NULL DEFAULT 0,
			PRIMARY KEY (site, month)
		)`,
		`CREATE TABLE IF NOT EXISTS case_reports (
			case_no TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			quantity INT NOT NULL DEFAULT 1,
			status TEXT NOT NULL,
			last_location TEXT NOT NULL DEFAULT '',
			last_class TEXT NOT NULL DEFAULT '',
			first_event_at TIMESTAMPTZ,
			last_warehouse_at TIMESTAMPTZ,
			delivered_at TIMESTAMPTZ,
			elapsed_days INT,
			lead_time_days INT,
			PRIMARY KEY (source, case_no)
		)`,
		`CREATE TABLE IF NOT EXISTS dead_stock (
			case_no TEXT PRIMARY KEY,
			warehouse TEXT NOT NULL,
			last_inbound_at TIMESTAMPTZ NOT NULL,
			elapsed_days INT NOT NULL,
			tier TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_case_reports_status ON case_reports (status)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
