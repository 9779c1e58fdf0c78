package interview

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/observability/metrics"
)

// SubmitAnswer records the audio answer for the session's outstanding
// question and advances the session, returning a short filler acknowledgment.
//
// This is the latency-sensitive path of a turn: the audio is persisted and
// the question marked AnswerPending, but transcription and scoring are
// deferred to the end-of-session pass so the caller never waits on them.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, audio io.Reader) (string, error) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.CurrentQuestionID == nil {
		return "", &NoOutstandingQuestionError{SessionID: sessionID}
	}

	q, err := s.questions.GetQuestion(ctx, *sess.CurrentQuestionID)
	if err != nil {
		return "", fmt.Errorf("failed to load outstanding question: %w", err)
	}
	if q == nil {
		return "", &QuestionNotFoundError{ID: *sess.CurrentQuestionID}
	}

	audioPath, err := s.media.SaveAnswerAudio(sess.CandidateName, sess.ID, audio)
	if err != nil {
		return "", fmt.Errorf("failed to store answer audio: %w", err)
	}

	q.AnswerAudioPath = audioPath
	q.AnswerText = AnswerPending
	if err := s.questions.UpdateQuestion(ctx, q); err != nil {
		return "", fmt.Errorf("failed to persist question: %w", err)
	}

	sess.AskedQuestionIDs = append(sess.AskedQuestionIDs, q.ID)
	sess.CurrentQuestionID = nil
	sess.CurrentQuestionAttempts = 0
	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	metrics.Default.AnswersSubmitted.Inc()
	s.log.Debug().
		Str("sessionId", sessionID.String()).
		Str("questionId", q.ID.String()).
		Msg("answer recorded")

	return randomFiller(), nil
}

// RephraseCurrent re-issues the outstanding question with a rephrased text.
// It does not advance the session; it only consumes one of the question's
// rephrase attempts. The cap prevents an infinite rephrase loop.
func (s *Service) RephraseCurrent(ctx context.Context, sessionID uuid.UUID) (string, error) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Status != StatusRunning {
		return "", &SessionNotRunningError{SessionID: sessionID, Status: sess.Status}
	}
	if sess.CurrentQuestionID == nil {
		return "", &NoOutstandingQuestionError{SessionID: sessionID}
	}
	if sess.CurrentQuestionAttempts >= maxRephraseAttempts {
		return "", &AttemptsExhaustedError{
			SessionID:  sessionID,
			QuestionID: *sess.CurrentQuestionID,
			Attempts:   sess.CurrentQuestionAttempts,
		}
	}

	q, err := s.questions.GetQuestion(ctx, *sess.CurrentQuestionID)
	if err != nil {
		return "", fmt.Errorf("failed to load outstanding question: %w", err)
	}
	if q == nil {
		return "", &QuestionNotFoundError{ID: *sess.CurrentQuestionID}
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeouts.Generate)
	defer cancel()
	rephrased, err := s.generator.Rephrase(genCtx, q.Text)
	if err != nil {
		return "", fmt.Errorf("rephrase failed: %w", err)
	}

	sess.CurrentQuestionAttempts++
	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	s.log.Debug().
		Str("sessionId", sessionID.String()).
		Str("questionId", q.ID.String()).
		Int("attempts", sess.CurrentQuestionAttempts).
		Msg("question rephrased")

	return rephrased, nil
}
