package db

import (
	"context"

	"parkingpass/internal/types"
)

// Schema creates the reference tables if they do not exist. It is
// idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS parking_lots (
	id                   TEXT PRIMARY KEY,
	name                 TEXT NOT NULL,
	kind                 TEXT,
	parking_type         TEXT,
	address              TEXT,
	total_spaces         INTEGER,
	operating_hours      TEXT,
	fee_type             TEXT,
	fee_basic            INTEGER,
	fee_basic_time       INTEGER,
	fee_additional       INTEGER,
	fee_additional_time  INTEGER,
	fee_daily            INTEGER,
	fee_monthly          INTEGER,
	fee_info             TEXT,
	payment_methods      TEXT,
	latitude             DOUBLE PRECISION,
	longitude            DOUBLE PRECISION,
	has_disabled_parking BOOLEAN,
	facilities           TEXT[],
	managing_org         TEXT,
	phone                TEXT,
	data_date            TEXT
);

CREATE TABLE IF NOT EXISTS violation_patterns (
	category TEXT NOT NULL,
	bucket   TEXT NOT NULL,
	count    INTEGER NOT NULL,
	weight   DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (category, bucket)
);`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to apply schema", err)
	}
	return nil
}
