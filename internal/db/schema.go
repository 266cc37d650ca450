package db

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS rates (
    id           BIGSERIAL PRIMARY KEY,
    vehicle_type TEXT NOT NULL UNIQUE,
    hourly_rate  DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS parking_sessions (
    token        TEXT PRIMARY KEY,
    plate        TEXT NOT NULL,
    vehicle_type TEXT NOT NULL,
    brand        TEXT,
    model        TEXT,
    color        TEXT,
    entry_time   TIMESTAMPTZ NOT NULL,
    exit_time    TIMESTAMPTZ,
    amount_paid  DOUBLE PRECISION
);

CREATE INDEX IF NOT EXISTS idx_parking_sessions_plate ON parking_sessions (plate) WHERE exit_time IS NULL;
CREATE INDEX IF NOT EXISTS idx_parking_sessions_entry_time ON parking_sessions (entry_time);
CREATE INDEX IF NOT EXISTS idx_parking_sessions_exit_time ON parking_sessions (exit_time);
`

// EnsureSchema creates the rates and parking_sessions tables when absent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("db: ensure schema: %w", err)
	}
	return nil
}

// SeedDefaultRates inserts the stock vehicle types when they do not exist yet.
func SeedDefaultRates(ctx context.Context, db *sql.DB) error {
	const query = `
		INSERT INTO rates (vehicle_type, hourly_rate)
		VALUES ('Auto', 20.0), ('Moto', 10.0)
		ON CONFLICT (vehicle_type) DO NOTHING
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("db: seed rates: %w", err)
	}
	return nil
}
