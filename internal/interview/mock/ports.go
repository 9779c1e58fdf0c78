package mock

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/jonathan/interview-agent/internal/interview"
)

// Generator is a scripted interview.Generator. It returns the configured
// question specs and echoes rephrase requests with a marker prefix.
type Generator struct {
	Specs []interview.QuestionSpec
	// GenerateErr, when set, fails every Generate call.
	GenerateErr error
	// RephraseErr, when set, fails every Rephrase call.
	RephraseErr error

	RephraseCalls atomic.Int32
}

// DefaultSpecs provides a small realistic question set for simulations.
var DefaultSpecs = []interview.QuestionSpec{
	{
		Text:              "Walk me through a service you designed end to end.",
		Category:          "Technical",
		Difficulty:        interview.DifficultyMedium,
		ExpectedKeyPoints: []string{"requirements", "tradeoffs", "operational concerns"},
	},
	{
		Text:              "A production deploy doubled tail latency. How do you investigate?",
		Category:          "Problem-Solving",
		Difficulty:        interview.DifficultyHard,
		ExpectedKeyPoints: []string{"metrics", "bisection", "rollback criteria"},
	},
	{
		Text:              "Tell me about a disagreement with a teammate and how it resolved.",
		Category:          "Behavioral",
		Difficulty:        interview.DifficultyEasy,
		ExpectedKeyPoints: []string{"empathy", "outcome"},
	},
}

func (g *Generator) Generate(_ context.Context, _ string, _ *interview.RoleProfile) ([]interview.QuestionSpec, error) {
	if g.GenerateErr != nil {
		return nil, g.GenerateErr
	}
	specs := g.Specs
	if specs == nil {
		specs = DefaultSpecs
	}
	return specs, nil
}

func (g *Generator) Rephrase(_ context.Context, questionText string) (string, error) {
	if g.RephraseErr != nil {
		return "", g.RephraseErr
	}
	g.RephraseCalls.Add(1)
	return "Put differently: " + questionText, nil
}

// Evaluator is a scripted interview.Evaluator. Every answer receives Score
// unless FailFor marks its question text as failing.
type Evaluator struct {
	Score int
	// FailFor fails evaluation for answers to these question texts.
	FailFor map[string]error
	// SummarizeErr, when set, fails the summary request.
	SummarizeErr error

	mu         sync.Mutex
	Summarized []interview.Evaluation
}

func (e *Evaluator) Evaluate(_ context.Context, questionText, answerText string, _ []string) (*interview.Evaluation, error) {
	if err, ok := e.FailFor[questionText]; ok {
		return nil, err
	}
	return &interview.Evaluation{
		Score:    e.Score,
		Feedback: fmt.Sprintf("Scored %d for: %s", e.Score, answerText),
		Raw:      []byte(fmt.Sprintf(`{"score":%d,"brief_feedback":"ok"}`, e.Score)),
	}, nil
}

func (e *Evaluator) Summarize(_ context.Context, evaluations []interview.Evaluation) (string, error) {
	if e.SummarizeErr != nil {
		return "", e.SummarizeErr
	}
	e.mu.Lock()
	e.Summarized = append([]interview.Evaluation(nil), evaluations...)
	e.mu.Unlock()
	return fmt.Sprintf(`{"overall_score":%d}`, len(evaluations)), nil
}

// Transcriber is a scripted interview.Transcriber. FailFor marks audio paths
// that fail, simulating bad audio or an engine timeout.
type Transcriber struct {
	FailFor map[string]error

	Calls atomic.Int32
}

func (t *Transcriber) Transcribe(_ context.Context, audioPath string) (string, error) {
	t.Calls.Add(1)
	if err, ok := t.FailFor[audioPath]; ok {
		return "", err
	}
	return "transcript of " + audioPath, nil
}

// Synthesizer is a scripted interview.Synthesizer that writes a placeholder
// file. FailFor marks question texts whose synthesis fails.
type Synthesizer struct {
	FailFor map[string]error

	Calls atomic.Int32
}

func (s *Synthesizer) Synthesize(_ context.Context, text, destPath string) error {
	s.Calls.Add(1)
	if err, ok := s.FailFor[text]; ok {
		return err
	}
	return os.WriteFile(destPath, []byte("RIFF"+text), 0o644)
}
