package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-agent/internal/interview"
)

// CreateSession inserts a new session row.
func (db *DB) CreateSession(ctx context.Context, s *interview.Session) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO interview_sessions
		 (id, user_id, candidate_name, candidate_email, start_time, status,
		  total_score, evaluated_count, current_question_id, current_question_attempts,
		  asked_question_ids, final_feedback, finalized_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.UserID, s.CandidateName, s.CandidateEmail, s.StartTime, s.Status,
		s.TotalScore, s.EvaluatedCount, s.CurrentQuestionID, s.CurrentQuestionAttempts,
		s.AskedQuestionIDs, s.FinalFeedback, s.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID, returning (nil, nil) when absent.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*interview.Session, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, user_id, candidate_name, candidate_email, start_time, status,
		        total_score, evaluated_count, current_question_id, current_question_attempts,
		        asked_question_ids, final_feedback, finalized_at
		 FROM interview_sessions WHERE id = $1`,
		id,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// UpdateSession overwrites the session row. The update is keyed by ID, so
// retrying a partially applied transition is safe.
func (db *DB) UpdateSession(ctx context.Context, s *interview.Session) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE interview_sessions SET
		 status = $2, total_score = $3, evaluated_count = $4,
		 current_question_id = $5, current_question_attempts = $6,
		 asked_question_ids = $7, final_feedback = $8, finalized_at = $9
		 WHERE id = $1`,
		s.ID, s.Status, s.TotalScore, s.EvaluatedCount,
		s.CurrentQuestionID, s.CurrentQuestionAttempts,
		s.AskedQuestionIDs, s.FinalFeedback, s.FinalizedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", s.ID)
	}
	return nil
}

// ListSessions retrieves all sessions, most recent first.
func (db *DB) ListSessions(ctx context.Context) ([]*interview.Session, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, candidate_name, candidate_email, start_time, status,
		        total_score, evaluated_count, current_question_id, current_question_attempts,
		        asked_question_ids, final_feedback, finalized_at
		 FROM interview_sessions ORDER BY start_time DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*interview.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*interview.Session, error) {
	var s interview.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.CandidateName, &s.CandidateEmail, &s.StartTime, &s.Status,
		&s.TotalScore, &s.EvaluatedCount, &s.CurrentQuestionID, &s.CurrentQuestionAttempts,
		&s.AskedQuestionIDs, &s.FinalFeedback, &s.FinalizedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
