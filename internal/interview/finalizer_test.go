package interview_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/interview/mock"
)

func TestEndInterview_ProcessesCollectedAnswers(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	ctx := context.Background()

	for range mock.DefaultSpecs {
		_, err := f.svc.NextQuestion(ctx, sess.ID)
		require.NoError(t, err)
		f.answer(t, sess.ID)
	}

	require.NoError(t, f.svc.EndInterview(ctx, sess.ID))

	loaded, err := f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.StatusCompleted, loaded.Status)
	require.NotNil(t, loaded.FinalizedAt)

	f.svc.WaitForSession(sess.ID)

	loaded, err = f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3*f.evaluator.Score, loaded.TotalScore)
	assert.Equal(t, 3, loaded.EvaluatedCount)
	assert.NotEmpty(t, loaded.FinalFeedback)

	qs, err := f.svc.QuestionsForSession(ctx, sess.ID)
	require.NoError(t, err)
	for _, q := range qs {
		require.NotNil(t, q.Score)
		assert.Equal(t, f.evaluator.Score, *q.Score)
		assert.NotEqual(t, interview.AnswerPending, q.AnswerText)
		assert.Contains(t, q.AnswerText, "transcript of ")
		assert.NotEmpty(t, q.Feedback)
	}

	assert.Len(t, f.evaluator.Summarized, 3)
}

func TestEndInterview_SkipsQuestionWithoutAudio(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	ctx := context.Background()

	q1, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	f.answer(t, sess.ID)

	// Q2 is asked but its recording is lost before finalization.
	q2, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	f.answer(t, sess.ID)
	stored, err := f.questions.GetQuestion(ctx, q2.ID)
	require.NoError(t, err)
	stored.AnswerAudioPath = ""
	require.NoError(t, f.questions.UpdateQuestion(ctx, stored))

	require.NoError(t, f.svc.EndInterview(ctx, sess.ID))
	f.svc.WaitForSession(sess.ID)

	loaded, err := f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, f.evaluator.Score, loaded.TotalScore)
	assert.Equal(t, 1, loaded.EvaluatedCount)

	scored, err := f.questions.GetQuestion(ctx, q1.ID)
	require.NoError(t, err)
	require.NotNil(t, scored.Score)

	skipped, err := f.questions.GetQuestion(ctx, q2.ID)
	require.NoError(t, err)
	assert.Nil(t, skipped.Score)
}

func TestEndInterview_TranscriptionFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	ctx := context.Background()

	q1, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	f.answer(t, sess.ID)

	q2, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	f.answer(t, sess.ID)

	// Fail transcription for the second answer only.
	stored, err := f.questions.GetQuestion(ctx, q2.ID)
	require.NoError(t, err)
	f.transcriber.FailFor = map[string]error{
		stored.AnswerAudioPath: errors.New("engine timed out"),
	}

	require.NoError(t, f.svc.EndInterview(ctx, sess.ID))
	f.svc.WaitForSession(sess.ID)

	loaded, err := f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, f.evaluator.Score, loaded.TotalScore)
	assert.Equal(t, 1, loaded.EvaluatedCount)

	scored, err := f.questions.GetQuestion(ctx, q1.ID)
	require.NoError(t, err)
	require.NotNil(t, scored.Score)

	// The failed question keeps its pending marker and is never scored zero.
	failed, err := f.questions.GetQuestion(ctx, q2.ID)
	require.NoError(t, err)
	assert.Nil(t, failed.Score)
	assert.Equal(t, interview.AnswerPending, failed.AnswerText)
}

func TestEndInterview_EvaluationFailureIsIsolated(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	ctx := context.Background()

	q1, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	f.answer(t, sess.ID)

	q2, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	f.answer(t, sess.ID)

	f.evaluator.FailFor = map[string]error{
		q2.Text: errors.New("model unavailable"),
	}

	require.NoError(t, f.svc.EndInterview(ctx, sess.ID))
	f.svc.WaitForSession(sess.ID)

	loaded, err := f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, f.evaluator.Score, loaded.TotalScore)
	assert.Equal(t, 1, loaded.EvaluatedCount)

	// The transcript survives even though scoring failed.
	failed, err := f.questions.GetQuestion(ctx, q2.ID)
	require.NoError(t, err)
	assert.Nil(t, failed.Score)
	assert.Contains(t, failed.AnswerText, "transcript of ")

	scored, err := f.questions.GetQuestion(ctx, q1.ID)
	require.NoError(t, err)
	require.NotNil(t, scored.Score)
}

func TestEndInterview_Idempotent(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	ctx := context.Background()

	_, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	f.answer(t, sess.ID)

	require.NoError(t, f.svc.EndInterview(ctx, sess.ID))
	f.svc.WaitForSession(sess.ID)
	first := f.transcriber.Calls.Load()

	require.NoError(t, f.svc.EndInterview(ctx, sess.ID))
	f.svc.WaitForSession(sess.ID)

	// The second call schedules no work and re-aggregates nothing.
	assert.Equal(t, first, f.transcriber.Calls.Load())
	loaded, err := f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, f.evaluator.Score, loaded.TotalScore)
	assert.Equal(t, 1, loaded.EvaluatedCount)
}

func TestEndInterview_AfterNaturalExhaustion(t *testing.T) {
	f := newFixture(t)
	sess := f.start(t)
	ctx := context.Background()

	for range mock.DefaultSpecs {
		_, err := f.svc.NextQuestion(ctx, sess.ID)
		require.NoError(t, err)
		f.answer(t, sess.ID)
	}

	// Exhaustion flips the status without finalizing.
	q, err := f.svc.NextQuestion(ctx, sess.ID)
	require.NoError(t, err)
	require.Nil(t, q)

	loaded, err := f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, interview.StatusCompleted, loaded.Status)
	assert.Nil(t, loaded.FinalizedAt)

	// The explicit end still runs the result pass.
	require.NoError(t, f.svc.EndInterview(ctx, sess.ID))
	f.svc.WaitForSession(sess.ID)

	loaded, err = f.svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.EvaluatedCount)
	assert.Equal(t, 3*f.evaluator.Score, loaded.TotalScore)
}

func TestEndInterview_SessionNotFound(t *testing.T) {
	f := newFixture(t)

	err := f.svc.EndInterview(context.Background(), uuid.New())
	var notFound *interview.SessionNotFoundError
	require.ErrorAs(t, err, &notFound)
}
