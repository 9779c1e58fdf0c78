package interview

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-agent/internal/observability/logging"
	"github.com/jonathan/interview-agent/internal/observability/metrics"
)

// Pregenerate synthesizes audio for the session's questions ahead of the
// candidate reaching them. It is idempotent per question and tolerates
// partial failure: one failing synthesis never aborts the rest, because the
// serving path synthesizes on demand when the cache is cold.
func (s *Service) Pregenerate(ctx context.Context, sess *Session, questions []*Question) {
	slog := logging.WithSession(s.log, sess.ID.String())

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(pregenParallelism)

	for _, q := range questions {
		g.Go(func() error {
			if _, _, err := s.ensureQuestionAudio(ctx, sess, q); err != nil {
				metrics.Default.SynthesisFailures.Inc()
				slog.Warn().
					Err(err).
					Str("questionId", q.ID.String()).
					Msg("audio pre-generation failed for question")
			}
			return nil
		})
	}
	_ = g.Wait()

	slog.Info().
		Int("questions", len(questions)).
		Msg("audio pre-generation pass finished")
}

// EnsureQuestionAudio returns the path of the question's cached audio,
// synthesizing it first when the cache is cold. This is the on-demand
// fallback that makes pre-generation a pure latency optimization.
func (s *Service) EnsureQuestionAudio(ctx context.Context, sessionID, questionID uuid.UUID) (string, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	q, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return "", err
	}
	if q == nil || q.SessionID != sessionID {
		return "", &QuestionNotFoundError{ID: questionID}
	}
	path, _, err := s.ensureQuestionAudio(ctx, sess, q)
	return path, err
}

func (s *Service) ensureQuestionAudio(ctx context.Context, sess *Session, q *Question) (string, bool, error) {
	start := time.Now()
	path, created, err := s.media.EnsureQuestionAudio(sess.CandidateName, sess.ID, q.ID, func(destPath string) error {
		synthCtx, cancel := context.WithTimeout(ctx, s.timeouts.Synthesize)
		defer cancel()
		return s.synthesizer.Synthesize(synthCtx, q.Text, destPath)
	})
	if err != nil {
		return "", false, err
	}
	if created {
		metrics.Default.AudioPregenerated.Inc()
		metrics.Default.SynthesisLatency.Observe(time.Since(start).Seconds())
	}
	return path, created, nil
}
