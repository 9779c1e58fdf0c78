package interview

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/interview-agent/internal/observability/metrics"
)

// Timeouts holds the per-call bounds for external port calls made from
// background work. Zero values fall back to defaults.
type Timeouts struct {
	Generate   time.Duration
	Transcribe time.Duration
	Synthesize time.Duration
	Evaluate   time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Generate == 0 {
		t.Generate = 2 * time.Minute
	}
	if t.Transcribe == 0 {
		t.Transcribe = 5 * time.Minute
	}
	if t.Synthesize == 0 {
		t.Synthesize = 30 * time.Second
	}
	if t.Evaluate == 0 {
		t.Evaluate = 2 * time.Minute
	}
	return t
}

// maxRephraseAttempts caps how often a single outstanding question may be
// rephrased before the candidate has to answer or move on.
const maxRephraseAttempts = 3

// pregenParallelism bounds concurrent synthesis calls per session.
const pregenParallelism = 2

// ServiceOptions wires the orchestrator's collaborators.
type ServiceOptions struct {
	Sessions  SessionStore
	Questions QuestionStore
	Profiles  RoleProfileStore

	Generator   Generator
	Evaluator   Evaluator
	Transcriber Transcriber
	Synthesizer Synthesizer
	Media       MediaStore

	Timeouts Timeouts
	Logger   zerolog.Logger

	// Summary, when set, replaces the default sink that persists the
	// cross-question summary onto the session.
	Summary SummarySink
}

// Service is the interview orchestrator. All session state mutation goes
// through its methods; mutations for one session are serialized.
type Service struct {
	sessions  SessionStore
	questions QuestionStore
	profiles  RoleProfileStore

	generator   Generator
	evaluator   Evaluator
	transcriber Transcriber
	synthesizer Synthesizer
	media       MediaStore

	timeouts Timeouts
	log      zerolog.Logger
	summary  SummarySink

	locks *sessionLocks
	tasks *Tracker
}

// NewService creates the orchestrator.
func NewService(opts ServiceOptions) *Service {
	s := &Service{
		sessions:    opts.Sessions,
		questions:   opts.Questions,
		profiles:    opts.Profiles,
		generator:   opts.Generator,
		evaluator:   opts.Evaluator,
		transcriber: opts.Transcriber,
		synthesizer: opts.Synthesizer,
		media:       opts.Media,
		timeouts:    opts.Timeouts.withDefaults(),
		log:         opts.Logger,
		summary:     opts.Summary,
		locks:       newSessionLocks(),
		tasks:       NewTracker(),
	}
	if s.summary == nil {
		s.summary = s.persistSummary
	}
	return s
}

// WaitForSession blocks until all background work for the session (audio
// pre-generation, result processing) has finished.
func (s *Service) WaitForSession(sessionID uuid.UUID) {
	s.tasks.Wait(sessionID)
}

// StartParams holds the inputs for starting an interview.
type StartParams struct {
	UserID         uuid.UUID
	CandidateName  string
	CandidateEmail string
	ResumeText     string
	RequirementID  *uuid.UUID
}

// StartInterview creates a RUNNING session, generates its question set in
// bulk, and kicks off audio pre-generation in the background.
func (s *Service) StartInterview(ctx context.Context, p StartParams) (*Session, error) {
	sess := &Session{
		ID:             uuid.New(),
		UserID:         p.UserID,
		CandidateName:  p.CandidateName,
		CandidateEmail: p.CandidateEmail,
		StartTime:      time.Now().UTC(),
		Status:         StatusRunning,
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	profile, err := s.resolveProfile(ctx, p.RequirementID)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeouts.Generate)
	defer cancel()
	specs, err := s.generator.Generate(genCtx, p.ResumeText, profile)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	questions := make([]*Question, 0, len(specs))
	for i, spec := range specs {
		questions = append(questions, &Question{
			ID:                uuid.New(),
			SessionID:         sess.ID,
			CandidateID:       p.UserID,
			Position:          i,
			Text:              spec.Text,
			Category:          spec.Category,
			Difficulty:        spec.Difficulty,
			ExpectedKeyPoints: spec.ExpectedKeyPoints,
		})
	}
	if err := s.questions.CreateQuestions(ctx, questions); err != nil {
		return nil, fmt.Errorf("failed to save questions: %w", err)
	}

	metrics.Default.SessionsStarted.Inc()
	metrics.Default.QuestionsGenerated.Add(float64(len(questions)))
	s.log.Info().
		Str("sessionId", sess.ID.String()).
		Int("questions", len(questions)).
		Str("role", profile.Role).
		Msg("interview started")

	s.tasks.Go(sess.ID, func() {
		s.Pregenerate(context.Background(), sess, questions)
	})

	return sess, nil
}

// StartBareSession creates a RUNNING session with no questions. Used for
// smoke-testing the session plumbing without a generation backend.
func (s *Service) StartBareSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	sess := &Session{
		ID:        uuid.New(),
		UserID:    userID,
		StartTime: time.Now().UTC(),
		Status:    StatusRunning,
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return sess, nil
}

// GetSession returns the session or a not-found error.
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID) (*Session, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		return nil, &SessionNotFoundError{ID: sessionID}
	}
	return sess, nil
}

// ListSessions returns all sessions.
func (s *Service) ListSessions(ctx context.Context) ([]*Session, error) {
	return s.sessions.ListSessions(ctx)
}

// QuestionsForSession returns the session's questions in asking order.
func (s *Service) QuestionsForSession(ctx context.Context, sessionID uuid.UUID) ([]*Question, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.questions.ListBySession(ctx, sessionID)
}

// resolveProfile looks up the requested role profile, falling back to the
// first stored profile and finally to a built-in default.
func (s *Service) resolveProfile(ctx context.Context, requirementID *uuid.UUID) (*RoleProfile, error) {
	if requirementID != nil {
		p, err := s.profiles.GetProfile(ctx, *requirementID)
		if err != nil {
			return nil, fmt.Errorf("failed to load role profile: %w", err)
		}
		if p != nil {
			return p, nil
		}
	}
	all, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list role profiles: %w", err)
	}
	if len(all) > 0 {
		return all[0], nil
	}
	return defaultProfile(), nil
}

func defaultProfile() *RoleProfile {
	return &RoleProfile{
		Role:           "Software Engineer",
		RequiredSkills: []string{"Programming", "Communication", "Problem Solving"},
	}
}

// fillers keep the conversation flowing while transcription and scoring are
// deferred to the end of the session.
var fillers = []string{
	"Thank you.",
	"Got it, moving on.",
	"Okay, next question.",
	"Thanks for sharing that.",
	"Noted. Let's proceed.",
}

func randomFiller() string {
	return fillers[rand.Intn(len(fillers))]
}
