// Package interview implements the interview session orchestrator: the
// session state machine, question sequencing, the answer intake pipeline,
// audio pre-generation, and end-of-session result processing.
package interview

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of an interview session.
type Status string

// Session lifecycle states
const (
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusAborted   Status = "ABORTED"
)

// Difficulty represents the difficulty level of a question.
type Difficulty string

// Question difficulty levels
const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// AnswerPending marks a question whose audio has been recorded but not yet
// transcribed. It distinguishes "answer collected, transcript outstanding"
// from "no answer given" when the finalizer runs.
const AnswerPending = "AUDIO_PENDING"

// Session is one end-to-end interview attempt by one candidate.
// It is owned exclusively by the orchestrator and mutated only through
// the Service operations.
type Session struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	CandidateName  string    `json:"candidate_name"`
	CandidateEmail string    `json:"candidate_email"`
	StartTime      time.Time `json:"start_time"`
	Status         Status    `json:"status"`

	// TotalScore is the raw sum of per-question scores. EvaluatedCount is
	// the number of questions that contributed to it, so consumers can
	// derive an average without the orchestrator committing to one.
	TotalScore     int `json:"total_score"`
	EvaluatedCount int `json:"evaluated_count"`

	// CurrentQuestionID is set exactly while a question is outstanding.
	CurrentQuestionID       *uuid.UUID `json:"current_question_id,omitempty"`
	CurrentQuestionAttempts int        `json:"current_question_attempts"`

	// AskedQuestionIDs grows append-only; insertion order is asking order.
	AskedQuestionIDs []uuid.UUID `json:"asked_question_ids"`

	FinalFeedback string     `json:"final_feedback,omitempty"`
	FinalizedAt   *time.Time `json:"finalized_at,omitempty"`
}

// HasAsked reports whether the question has already been asked in this session.
func (s *Session) HasAsked(questionID uuid.UUID) bool {
	for _, id := range s.AskedQuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// Question is a single generated interview question, pre-linked to exactly
// one session at creation time.
type Question struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   uuid.UUID  `json:"session_id"`
	CandidateID uuid.UUID  `json:"candidate_id"`
	Position    int        `json:"position"`
	Text        string     `json:"text"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`

	// ExpectedKeyPoints is opaque to the orchestrator; it is passed through
	// to the evaluator verbatim.
	ExpectedKeyPoints []string `json:"expected_key_points,omitempty"`

	// AnswerText is empty until an answer is submitted, AnswerPending while
	// the transcript is outstanding, and the final transcript afterwards.
	AnswerText      string `json:"answer_text,omitempty"`
	AnswerAudioPath string `json:"answer_audio_path,omitempty"`

	// Score is set at most once, by the finalizer pass.
	Score    *int   `json:"score,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// RoleProfile describes the role an interview targets. Question generation
// tailors its output to the role and required skills.
type RoleProfile struct {
	ID               uuid.UUID `json:"id"`
	Role             string    `json:"role"`
	RequiredSkills   []string  `json:"required_skills"`
	DifficultyPolicy string    `json:"difficulty_policy,omitempty"`
}

// QuestionSpec is a generated question before it is persisted.
type QuestionSpec struct {
	Text              string
	Category          string
	Difficulty        Difficulty
	ExpectedKeyPoints []string
}

// Evaluation is the scored result for a single answered question.
type Evaluation struct {
	QuestionID uuid.UUID
	Category   string
	Score      int
	Feedback   string
	// Raw is the evaluator's full structured output, passed through to the
	// summary request.
	Raw []byte
}

// SessionStore persists sessions. Implementations return (nil, nil) for a
// missing session; the orchestrator maps that to a not-found error.
type SessionStore interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateSession(ctx context.Context, s *Session) error
	ListSessions(ctx context.Context) ([]*Session, error)
}

// QuestionStore persists questions. ListBySession returns questions ordered
// by their stable creation-order key.
type QuestionStore interface {
	CreateQuestions(ctx context.Context, qs []*Question) error
	GetQuestion(ctx context.Context, id uuid.UUID) (*Question, error)
	UpdateQuestion(ctx context.Context, q *Question) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Question, error)
}

// RoleProfileStore persists role profiles.
type RoleProfileStore interface {
	CreateProfile(ctx context.Context, p *RoleProfile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*RoleProfile, error)
	ListProfiles(ctx context.Context) ([]*RoleProfile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
}

// Generator produces the question set for a session and rephrases questions
// the candidate did not understand.
type Generator interface {
	Generate(ctx context.Context, resumeText string, profile *RoleProfile) ([]QuestionSpec, error)
	Rephrase(ctx context.Context, questionText string) (string, error)
}

// Evaluator scores a single answer and summarizes a full interview.
type Evaluator interface {
	Evaluate(ctx context.Context, questionText, answerText string, keyPoints []string) (*Evaluation, error)
	Summarize(ctx context.Context, evaluations []Evaluation) (string, error)
}

// Transcriber converts recorded answer audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Synthesizer renders question text into an audio file at destPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, destPath string) error
}

// MediaStore holds generated question audio and submitted answer audio,
// namespaced per session. Question audio is append-only: EnsureQuestionAudio
// synthesizes at most once per question, concurrent callers included.
type MediaStore interface {
	HasQuestionAudio(candidateName string, sessionID, questionID uuid.UUID) bool
	EnsureQuestionAudio(candidateName string, sessionID, questionID uuid.UUID, synth func(destPath string) error) (path string, created bool, err error)
	SaveAnswerAudio(candidateName string, sessionID uuid.UUID, audio io.Reader) (string, error)
}

// SummarySink receives the cross-question summary produced at the end of the
// finalizer pass. The default sink stores it on the session's FinalFeedback.
type SummarySink func(ctx context.Context, sessionID uuid.UUID, summary string)
