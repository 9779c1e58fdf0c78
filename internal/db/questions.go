package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-agent/internal/interview"
)

// CreateQuestions bulk-inserts a session's generated question set.
func (db *DB) CreateQuestions(ctx context.Context, qs []*interview.Question) error {
	batch := &pgx.Batch{}
	for _, q := range qs {
		batch.Queue(
			`INSERT INTO interview_questions
			 (id, session_id, candidate_id, ordinal, question_text, category, difficulty,
			  expected_key_points, answer_text, answer_audio_path, score, feedback)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			q.ID, q.SessionID, q.CandidateID, q.Position, q.Text, q.Category, q.Difficulty,
			q.ExpectedKeyPoints, q.AnswerText, q.AnswerAudioPath, q.Score, q.Feedback,
		)
	}
	br := db.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range qs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}
	return nil
}

// GetQuestion retrieves a question by ID, returning (nil, nil) when absent.
func (db *DB) GetQuestion(ctx context.Context, id uuid.UUID) (*interview.Question, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, session_id, candidate_id, ordinal, question_text, category, difficulty,
		        expected_key_points, answer_text, answer_audio_path, score, feedback
		 FROM interview_questions WHERE id = $1`,
		id,
	)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

// UpdateQuestion overwrites the mutable answer fields of a question.
func (db *DB) UpdateQuestion(ctx context.Context, q *interview.Question) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE interview_questions SET
		 answer_text = $2, answer_audio_path = $3, score = $4, feedback = $5
		 WHERE id = $1`,
		q.ID, q.AnswerText, q.AnswerAudioPath, q.Score, q.Feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("question not found: %s", q.ID)
	}
	return nil
}

// ListBySession retrieves a session's questions in creation order, which is
// the asking order.
func (db *DB) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*interview.Question, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, candidate_id, ordinal, question_text, category, difficulty,
		        expected_key_points, answer_text, answer_audio_path, score, feedback
		 FROM interview_questions WHERE session_id = $1 ORDER BY ordinal ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []*interview.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func scanQuestion(row pgx.Row) (*interview.Question, error) {
	var q interview.Question
	err := row.Scan(
		&q.ID, &q.SessionID, &q.CandidateID, &q.Position, &q.Text, &q.Category, &q.Difficulty,
		&q.ExpectedKeyPoints, &q.AnswerText, &q.AnswerAudioPath, &q.Score, &q.Feedback,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
