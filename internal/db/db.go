// Package db provides PostgreSQL persistence for interview sessions,
// questions, and role profiles.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool and implements the orchestrator's
// store interfaces.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the schema if it does not exist. The orchestrator never
// deletes interview rows; completed sessions are kept for result queries.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS interview_sessions (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL,
			candidate_name TEXT NOT NULL DEFAULT '',
			candidate_email TEXT NOT NULL DEFAULT '',
			start_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			total_score INT NOT NULL DEFAULT 0,
			evaluated_count INT NOT NULL DEFAULT 0,
			current_question_id UUID,
			current_question_attempts INT NOT NULL DEFAULT 0,
			asked_question_ids UUID[] NOT NULL DEFAULT '{}',
			final_feedback TEXT NOT NULL DEFAULT '',
			finalized_at TIMESTAMPTZ
		);

		CREATE TABLE IF NOT EXISTS interview_questions (
			id UUID PRIMARY KEY,
			session_id UUID NOT NULL REFERENCES interview_sessions(id),
			candidate_id UUID NOT NULL,
			ordinal INT NOT NULL,
			question_text TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			difficulty TEXT NOT NULL DEFAULT 'MEDIUM',
			expected_key_points TEXT[] NOT NULL DEFAULT '{}',
			answer_text TEXT NOT NULL DEFAULT '',
			answer_audio_path TEXT NOT NULL DEFAULT '',
			score INT,
			feedback TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_questions_session
			ON interview_questions (session_id, ordinal);

		CREATE TABLE IF NOT EXISTS role_profiles (
			id UUID PRIMARY KEY,
			role TEXT NOT NULL,
			required_skills TEXT[] NOT NULL DEFAULT '{}',
			difficulty_policy TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
