package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"

	"github.com/ovenlab/orderstock/internal/entity"
)

// InitDB opens the connection and applies the schema.
func InitDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated")
	return db, nil
}

func migrateDB(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS clients (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			stock NUMERIC(12,3) NOT NULL DEFAULT 0 CHECK (stock >= 0)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES clients(id),
			status TEXT NOT NULL DEFAULT 'PENDING_VALIDATION',
			total_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
			total_currency TEXT NOT NULL DEFAULT 'USD',
			street TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			zip_code TEXT NOT NULL,
			country TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_lines (
			id SERIAL PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id),
			product_id UUID NOT NULL,
			product_name TEXT NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
			quantity NUMERIC(12,3) NOT NULL
		);

		CREATE TABLE IF NOT EXISTS ingredients (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			quantity NUMERIC(12,3) NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			unit TEXT NOT NULL DEFAULT '',
			price NUMERIC(12,2) NOT NULL DEFAULT 0,
			supplier TEXT NOT NULL DEFAULT '',
			minimum_stock NUMERIC(12,3) NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS recipes (
			id UUID PRIMARY KEY,
			product_id UUID NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			instructions TEXT NOT NULL DEFAULT '',
			preparation_time INT NOT NULL DEFAULT 0,
			difficulty TEXT NOT NULL DEFAULT '',
			cost NUMERIC(12,2) NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS recipe_ingredients (
			id SERIAL PRIMARY KEY,
			recipe_id UUID NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			ingredient_id UUID NOT NULL REFERENCES ingredients(id),
			quantity NUMERIC(12,3) NOT NULL,
			unit TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS processed_orders (
			order_id UUID PRIMARY KEY,
			processed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

const maxRetries = 3

// withRetry runs fn with bounded exponential backoff. Only transient
// connection-level failures are retried; exhaustion surfaces as a
// StorageError so callers can tell it apart from business rejections.
func withRetry(ctx context.Context, op string, fn func() error) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	err := backoff.Retry(func() error {
		if err := fn(); err != nil {
			if isRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}, bo)
	if err != nil && isRetryable(err) {
		return &entity.StorageError{Op: op, Err: err}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Connection failures and serialization/deadlock conflicts.
		return strings.HasPrefix(string(pqErr.Code), "08") ||
			pqErr.Code == "40001" || pqErr.Code == "40P01"
	}
	return false
}
