package repository

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables the service needs.
// Safe to call multiple times - uses IF NOT EXISTS.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

-- Listings with neighbourhood statistics and campus distances in metres
CREATE TABLE IF NOT EXISTS listings (
    id BIGSERIAL PRIMARY KEY,
    area_name TEXT NOT NULL DEFAULT '',
    address TEXT NOT NULL DEFAULT '',
    rent DOUBLE PRECISION NOT NULL,
    bed DOUBLE PRECISION NOT NULL DEFAULT 0,
    bath DOUBLE PRECISION NOT NULL DEFAULT 0,
    violent_crime_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
    overall_crime_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
    northeastern_transit_m DOUBLE PRECISION,
    boston_university_transit_m DOUBLE PRECISION,
    boston_college_transit_m DOUBLE PRECISION,
    northeastern_driving_m DOUBLE PRECISION,
    latitude DOUBLE PRECISION,
    longitude DOUBLE PRECISION,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_listings_ne_driving ON listings(northeastern_driving_m);

-- Completed chat conversations
CREATE TABLE IF NOT EXISTS chat_submissions (
    id BIGSERIAL PRIMARY KEY,
    session_id TEXT NOT NULL,
    payload JSONB NOT NULL,
    preference vector(3) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_chat_submissions_session ON chat_submissions(session_id);
`
