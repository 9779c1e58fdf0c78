package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/observability/logging"
	"github.com/jonathan/interview-agent/internal/observability/metrics"
)

// EndInterview explicitly ends the session. The status flips to COMPLETED
// synchronously; transcription, evaluation and aggregation of the collected
// answers run in a background pass over a snapshot of the asked questions.
//
// Calling EndInterview again after the pass has been scheduled is a no-op,
// so scores are never double-aggregated.
func (s *Service) EndInterview(ctx context.Context, sessionID uuid.UUID) error {
	unlock := s.locks.acquire(sessionID)

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		unlock()
		return err
	}
	if sess.FinalizedAt != nil {
		unlock()
		return nil
	}

	now := time.Now().UTC()
	sess.Status = StatusCompleted
	sess.FinalizedAt = &now

	// Snapshot at end-time: answers submitted later are not part of this pass.
	asked := make([]uuid.UUID, len(sess.AskedQuestionIDs))
	copy(asked, sess.AskedQuestionIDs)

	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		unlock()
		return fmt.Errorf("failed to persist session: %w", err)
	}
	unlock()

	metrics.Default.SessionsCompleted.Inc()
	s.log.Info().
		Str("sessionId", sessionID.String()).
		Int("answers", len(asked)).
		Msg("interview ended, processing results")

	s.tasks.Go(sessionID, func() {
		s.processResults(context.Background(), sessionID, asked)
	})
	return nil
}

// processResults drains the collected answers through transcription and
// evaluation. A failure on one question is logged and skipped, never
// scored as zero, and never stops the remaining questions.
func (s *Service) processResults(ctx context.Context, sessionID uuid.UUID, askedIDs []uuid.UUID) {
	slog := logging.WithSession(s.log, sessionID.String())

	var (
		total       int
		count       int
		evaluations []Evaluation
	)

	for _, qid := range askedIDs {
		q, err := s.questions.GetQuestion(ctx, qid)
		if err != nil || q == nil {
			slog.Warn().Err(err).Str("questionId", qid.String()).Msg("skipping unloadable question")
			continue
		}

		// Scores are set at most once; an already-scored question only
		// contributes to the aggregate.
		if q.Score != nil {
			total += *q.Score
			count++
			continue
		}
		if q.AnswerAudioPath == "" {
			continue
		}

		transcript, err := s.transcribeAnswer(ctx, q)
		if err != nil {
			metrics.Default.TranscriptionFailures.Inc()
			slog.Warn().Err(err).Str("questionId", qid.String()).Msg("transcription failed, skipping question")
			continue
		}
		q.AnswerText = transcript
		if err := s.questions.UpdateQuestion(ctx, q); err != nil {
			slog.Warn().Err(err).Str("questionId", qid.String()).Msg("failed to persist transcript")
			continue
		}

		eval, err := s.evaluateAnswer(ctx, q, transcript)
		if err != nil {
			metrics.Default.EvaluationFailures.Inc()
			slog.Warn().Err(err).Str("questionId", qid.String()).Msg("evaluation failed, skipping question")
			continue
		}

		score := eval.Score
		q.Score = &score
		q.Feedback = eval.Feedback
		if err := s.questions.UpdateQuestion(ctx, q); err != nil {
			slog.Warn().Err(err).Str("questionId", qid.String()).Msg("failed to persist evaluation")
			continue
		}

		total += score
		count++
		eval.QuestionID = q.ID
		eval.Category = q.Category
		evaluations = append(evaluations, *eval)
	}

	s.persistTotals(ctx, sessionID, total, count)

	if len(evaluations) > 0 {
		sumCtx, cancel := context.WithTimeout(ctx, s.timeouts.Evaluate)
		summary, err := s.evaluator.Summarize(sumCtx, evaluations)
		cancel()
		if err != nil {
			slog.Warn().Err(err).Msg("summary generation failed")
		} else {
			s.summary(ctx, sessionID, summary)
		}
	}

	slog.Info().
		Int("evaluated", count).
		Int("totalScore", total).
		Msg("result processing finished")
}

func (s *Service) transcribeAnswer(ctx context.Context, q *Question) (string, error) {
	start := time.Now()
	tctx, cancel := context.WithTimeout(ctx, s.timeouts.Transcribe)
	defer cancel()
	transcript, err := s.transcriber.Transcribe(tctx, q.AnswerAudioPath)
	if err != nil {
		return "", err
	}
	metrics.Default.TranscriptionLatency.Observe(time.Since(start).Seconds())
	return transcript, nil
}

func (s *Service) evaluateAnswer(ctx context.Context, q *Question, transcript string) (*Evaluation, error) {
	start := time.Now()
	ectx, cancel := context.WithTimeout(ctx, s.timeouts.Evaluate)
	defer cancel()
	eval, err := s.evaluator.Evaluate(ectx, q.Text, transcript, q.ExpectedKeyPoints)
	if err != nil {
		return nil, err
	}
	metrics.Default.EvaluationLatency.Observe(time.Since(start).Seconds())
	metrics.Default.AnswersEvaluated.Inc()
	return eval, nil
}

// persistTotals writes the aggregate onto the session once the pass completes.
func (s *Service) persistTotals(ctx context.Context, sessionID uuid.UUID, total, count int) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil || sess == nil {
		s.log.Warn().Err(err).Str("sessionId", sessionID.String()).Msg("failed to reload session for totals")
		return
	}
	sess.TotalScore = total
	sess.EvaluatedCount = count
	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("sessionId", sessionID.String()).Msg("failed to persist totals")
	}
}

// persistSummary is the default SummarySink: it stores the cross-question
// summary on the session's final feedback and logs it.
func (s *Service) persistSummary(ctx context.Context, sessionID uuid.UUID, summary string) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil || sess == nil {
		s.log.Warn().Err(err).Str("sessionId", sessionID.String()).Msg("failed to reload session for summary")
		return
	}
	sess.FinalFeedback = summary
	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		s.log.Warn().Err(err).Str("sessionId", sessionID.String()).Msg("failed to persist summary")
		return
	}
	s.log.Info().Str("sessionId", sessionID.String()).Msg("interview summary stored")
}
