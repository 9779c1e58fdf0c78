package interview

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// NextQuestion picks the next unanswered question for the session.
//
// It returns (nil, nil) when the session is not RUNNING. If a question is
// already outstanding it is returned unchanged, so repeated polling is
// side-effect-free. Selecting a question sets CurrentQuestionID and resets
// the attempt counter; exhausting the question set transitions the session
// to COMPLETED, idempotently.
func (s *Service) NextQuestion(ctx context.Context, sessionID uuid.UUID) (*Question, error) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != StatusRunning {
		return nil, nil
	}

	// Re-entrancy: an outstanding question is served again, not advanced.
	if sess.CurrentQuestionID != nil {
		q, err := s.questions.GetQuestion(ctx, *sess.CurrentQuestionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load outstanding question: %w", err)
		}
		if q == nil {
			return nil, &QuestionNotFoundError{ID: *sess.CurrentQuestionID}
		}
		return q, nil
	}

	// ListBySession orders by the creation-order key, preserving the
	// generated difficulty and category distribution.
	candidates, err := s.questions.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session questions: %w", err)
	}

	for _, q := range candidates {
		if sess.HasAsked(q.ID) {
			continue
		}
		id := q.ID
		sess.CurrentQuestionID = &id
		sess.CurrentQuestionAttempts = 0
		if err := s.sessions.UpdateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
		return q, nil
	}

	// No unasked question remains: natural exhaustion.
	sess.Status = StatusCompleted
	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	s.log.Info().Str("sessionId", sessionID.String()).Msg("question set exhausted, session completed")
	return nil, nil
}
