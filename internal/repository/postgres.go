package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentrobo/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

const listingColumns = `
			id, area_name, address, rent, bed, bath,
			violent_crime_rate, overall_crime_rate,
			northeastern_transit_m, boston_university_transit_m, boston_college_transit_m,
			northeastern_driving_m, latitude, longitude,
			created_at, updated_at`

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// NewFromDB wraps an existing connection.
func NewFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// Ping checks the database connection
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListListings returns one page of listings ordered by id, plus the total count
func (r *PostgresRepository) ListListings(ctx context.Context, limit, offset int) ([]model.Listing, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings`); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	query := `SELECT` + listingColumns + `
		FROM listings
		ORDER BY id
		LIMIT $1 OFFSET $2`

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch listings: %w", err)
	}
	return listings, total, nil
}

// GetListingByID retrieves a single listing by its ID. A missing listing
// returns nil without error.
func (r *PostgresRepository) GetListingByID(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	query := `SELECT` + listingColumns + `
		FROM listings
		WHERE id = $1`
	err := r.db.GetContext(ctx, &listing, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}
	return &listing, nil
}

// ListCandidates returns the listings eligible for recommendation: those
// within maxDrivingM of Northeastern by car. Rows without a driving
// distance are excluded.
func (r *PostgresRepository) ListCandidates(ctx context.Context, maxDrivingM float64) ([]model.Listing, error) {
	query := `SELECT` + listingColumns + `
		FROM listings
		WHERE northeastern_driving_m IS NOT NULL AND northeastern_driving_m <= $1
		ORDER BY id`

	listings := []model.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, maxDrivingM); err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	return listings, nil
}

// SaveSubmission stores a completed conversation payload together with its
// preference weights as a vector.
func (r *PostgresRepository) SaveSubmission(ctx context.Context, sessionID string, payload model.FinalPayload) (int64, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode payload: %w", err)
	}

	w := payload.PreferenceOfFutureHouse.Weights()
	vec := pgvector.NewVector([]float32{float32(w[0]), float32(w[1]), float32(w[2])})

	var id int64
	query := `
		INSERT INTO chat_submissions (session_id, payload, preference)
		VALUES ($1, $2, $3)
		RETURNING id`
	if err := r.db.GetContext(ctx, &id, query, sessionID, body, vec); err != nil {
		return 0, fmt.Errorf("failed to save submission: %w", err)
	}
	return id, nil
}

// SimilarSubmissions returns the most recent submissions whose preference
// vector is closest to the given one.
func (r *PostgresRepository) SimilarSubmissions(ctx context.Context, pref model.PreferenceOfFutureHouse, limit int) ([]model.Submission, error) {
	w := pref.Weights()
	vec := pgvector.NewVector([]float32{float32(w[0]), float32(w[1]), float32(w[2])})

	query := `
		SELECT id, session_id, payload
		FROM chat_submissions
		ORDER BY preference <-> $1, created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryxContext(ctx, query, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	submissions := []model.Submission{}
	for rows.Next() {
		var (
			s    model.Submission
			body []byte
		)
		if err := rows.Scan(&s.ID, &s.SessionID, &body); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		if err := json.Unmarshal(body, &s.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode submission %d: %w", s.ID, err)
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submissions: %w", err)
	}
	return submissions, nil
}
