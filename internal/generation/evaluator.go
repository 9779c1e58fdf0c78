package generation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
)

// Evaluator scores individual answers and produces the cross-question
// interview summary.
type Evaluator struct {
	client llm.Client
}

// NewEvaluator creates an evaluator backed by the given LLM client.
func NewEvaluator(client llm.Client) *Evaluator {
	return &Evaluator{client: client}
}

// evaluationResponse mirrors the model's wire format.
type evaluationResponse struct {
	Score         int      `json:"score"`
	Strengths     []string `json:"strengths"`
	Improvements  []string `json:"improvements"`
	BriefFeedback string   `json:"brief_feedback"`
}

// Evaluate scores one answer against the question and its expected key
// points. Scores are whole numbers from 0 to 10, enforced by schema.
func (e *Evaluator) Evaluate(ctx context.Context, questionText, answerText string, keyPoints []string) (*interview.Evaluation, error) {
	template := prompts.MustGet("interview.json", "evaluate-answer")
	prompt := prompts.Format(template, map[string]string{
		"Question":  questionText,
		"Answer":    answerText,
		"KeyPoints": strings.Join(keyPoints, "; "),
	})

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "answer evaluation failed", Cause: err}
	}

	if err := validateAgainstSchema("evaluation.json", raw); err != nil {
		return nil, err
	}

	var resp evaluationResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &ParseError{Message: "failed to parse evaluation", Cause: err}
	}

	return &interview.Evaluation{
		Score:    resp.Score,
		Feedback: resp.BriefFeedback,
		Raw:      []byte(raw),
	}, nil
}

// Summarize issues the final cross-question summary request over the raw
// per-question evaluations and returns the aggregate report.
func (e *Evaluator) Summarize(ctx context.Context, evaluations []interview.Evaluation) (string, error) {
	combined := make([]json.RawMessage, 0, len(evaluations))
	for _, ev := range evaluations {
		if len(ev.Raw) > 0 {
			combined = append(combined, json.RawMessage(ev.Raw))
		}
	}
	body, err := json.Marshal(combined)
	if err != nil {
		return "", &ParseError{Message: "failed to combine evaluations", Cause: err}
	}

	template := prompts.MustGet("interview.json", "summarize-interview")
	prompt := prompts.Format(template, map[string]string{
		"Evaluations": string(body),
	})

	summary, err := e.client.GenerateJSON(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return "", &APICallError{Message: "summary generation failed", Cause: err}
	}
	return summary, nil
}
