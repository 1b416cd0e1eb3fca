package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported SQL dialects. The names double as database/sql driver names
// except for postgres, which is served by pgx.
const (
	DialectSQLite   = "sqlite"
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

func driverName(dialect string) string {
	if dialect == DialectPostgres {
		return "pgx"
	}
	return dialect
}

// NewDB opens a connection pool for the given dialect.
func NewDB(dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// A single connection keeps ":memory:" databases shared and serialises
		// writers on the file.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	return db, nil
}

// SQLStore persists keys in the kv_store table. Queries are written with ?
// placeholders and rebound for the driver.
type SQLStore struct {
	db      *sqlx.DB
	dialect string
}

// NewSQLStore wraps an open pool. Call Migrate before first use.
func NewSQLStore(db *sql.DB, dialect string) *SQLStore {
	return &SQLStore{db: sqlx.NewDb(db, driverName(dialect)), dialect: dialect}
}

const createTableQuery = `
	CREATE TABLE IF NOT EXISTS kv_store (
		storage_key   VARCHAR(191) NOT NULL PRIMARY KEY,
		storage_value TEXT NOT NULL,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

// Migrate creates the kv_store table if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableQuery); err != nil {
		return fmt.Errorf("migrate kv_store: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT storage_value FROM kv_store WHERE storage_key = ?`), key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery(), key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv_store WHERE storage_key = ?`), key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Close releases the pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) upsertQuery() string {
	if s.dialect == DialectMySQL {
		return `INSERT INTO kv_store (storage_key, storage_value) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE storage_value = VALUES(storage_value), updated_at = CURRENT_TIMESTAMP`
	}
	return s.db.Rebind(`INSERT INTO kv_store (storage_key, storage_value) VALUES (?, ?)
			ON CONFLICT (storage_key) DO UPDATE SET storage_value = excluded.storage_value, updated_at = CURRENT_TIMESTAMP`)
}
