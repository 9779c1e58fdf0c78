// Package generation implements the question generation and answer
// evaluation ports on top of the LLM client.
package generation

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/prompts"
)

// Generator produces interview question sets from resume text and a role
// profile, and rephrases questions on request.
type Generator struct {
	client llm.Client
}

// NewGenerator creates a generator backed by the given LLM client.
func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// questionSetResponse mirrors the model's wire format.
type questionSetResponse struct {
	Questions []struct {
		QuestionText      string   `json:"question_text"`
		Category          string   `json:"category"`
		Difficulty        string   `json:"difficulty"`
		ExpectedKeyPoints []string `json:"expected_key_points"`
	} `json:"questions"`
}

// Generate returns an ordered question set tailored to the resume and role.
// The model's output is schema-validated before it is trusted.
func (g *Generator) Generate(ctx context.Context, resumeText string, profile *interview.RoleProfile) ([]interview.QuestionSpec, error) {
	template := prompts.MustGet("interview.json", "generate-questions")
	prompt := prompts.Format(template, map[string]string{
		"ResumeText":     resumeText,
		"Role":           profile.Role,
		"RequiredSkills": strings.Join(profile.RequiredSkills, ", "),
	})

	raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &APICallError{Message: "question generation failed", Cause: err}
	}

	if err := validateAgainstSchema("question_set.json", raw); err != nil {
		return nil, err
	}

	var resp questionSetResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &ParseError{Message: "failed to parse question set", Cause: err}
	}

	specs := make([]interview.QuestionSpec, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		specs = append(specs, interview.QuestionSpec{
			Text:              q.QuestionText,
			Category:          q.Category,
			Difficulty:        normalizeDifficulty(q.Difficulty),
			ExpectedKeyPoints: q.ExpectedKeyPoints,
		})
	}
	return specs, nil
}

// Rephrase returns a simpler wording of the question without changing its
// core meaning.
func (g *Generator) Rephrase(ctx context.Context, questionText string) (string, error) {
	template := prompts.MustGet("interview.json", "rephrase-question")
	prompt := prompts.Format(template, map[string]string{
		"Question": questionText,
	})

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", &APICallError{Message: "rephrase failed", Cause: err}
	}
	return strings.TrimSpace(text), nil
}

// normalizeDifficulty maps free-form model output onto the known levels,
// defaulting to MEDIUM for anything unrecognized.
func normalizeDifficulty(s string) interview.Difficulty {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EASY":
		return interview.DifficultyEasy
	case "HARD":
		return interview.DifficultyHard
	default:
		return interview.DifficultyMedium
	}
}
