// Package mock provides in-memory stores and scripted collaborator ports for
// exercising the orchestrator without a database, an LLM backend, or speech
// engines.
package mock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/interview"
)

// SessionStore is an in-memory interview.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]interview.Session
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]interview.Session)}
}

func (s *SessionStore) CreateSession(_ context.Context, sess *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id uuid.UUID) (*interview.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	out := cloneSession(&sess)
	return &out, nil
}

func (s *SessionStore) UpdateSession(_ context.Context, sess *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *SessionStore) ListSessions(_ context.Context) ([]*interview.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*interview.Session, 0, len(s.sessions))
	for id := range s.sessions {
		sess := s.sessions[id]
		c := cloneSession(&sess)
		out = append(out, &c)
	}
	return out, nil
}

func cloneSession(s *interview.Session) interview.Session {
	out := *s
	out.AskedQuestionIDs = append([]uuid.UUID(nil), s.AskedQuestionIDs...)
	if s.CurrentQuestionID != nil {
		id := *s.CurrentQuestionID
		out.CurrentQuestionID = &id
	}
	if s.FinalizedAt != nil {
		t := *s.FinalizedAt
		out.FinalizedAt = &t
	}
	return out
}

// QuestionStore is an in-memory interview.QuestionStore.
type QuestionStore struct {
	mu        sync.Mutex
	questions map[uuid.UUID]interview.Question
}

// NewQuestionStore creates an empty in-memory question store.
func NewQuestionStore() *QuestionStore {
	return &QuestionStore{questions: make(map[uuid.UUID]interview.Question)}
}

func (s *QuestionStore) CreateQuestions(_ context.Context, qs []*interview.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range qs {
		s.questions[q.ID] = cloneQuestion(q)
	}
	return nil
}

func (s *QuestionStore) GetQuestion(_ context.Context, id uuid.UUID) (*interview.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, nil
	}
	out := cloneQuestion(&q)
	return &out, nil
}

func (s *QuestionStore) UpdateQuestion(_ context.Context, q *interview.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = cloneQuestion(q)
	return nil
}

func (s *QuestionStore) ListBySession(_ context.Context, sessionID uuid.UUID) ([]*interview.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*interview.Question
	for id := range s.questions {
		q := s.questions[id]
		if q.SessionID == sessionID {
			c := cloneQuestion(&q)
			out = append(out, &c)
		}
	}
	sortByPosition(out)
	return out, nil
}

func cloneQuestion(q *interview.Question) interview.Question {
	out := *q
	out.ExpectedKeyPoints = append([]string(nil), q.ExpectedKeyPoints...)
	if q.Score != nil {
		score := *q.Score
		out.Score = &score
	}
	return out
}

func sortByPosition(qs []*interview.Question) {
	for i := 1; i < len(qs); i++ {
		for j := i; j > 0 && qs[j-1].Position > qs[j].Position; j-- {
			qs[j-1], qs[j] = qs[j], qs[j-1]
		}
	}
}

// ProfileStore is an in-memory interview.RoleProfileStore.
type ProfileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]interview.RoleProfile
}

// NewProfileStore creates an empty in-memory role profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[uuid.UUID]interview.RoleProfile)}
}

func (s *ProfileStore) CreateProfile(_ context.Context, p *interview.RoleProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = *p
	return nil
}

func (s *ProfileStore) GetProfile(_ context.Context, id uuid.UUID) (*interview.RoleProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (s *ProfileStore) ListProfiles(_ context.Context) ([]*interview.RoleProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*interview.RoleProfile, 0, len(s.profiles))
	for id := range s.profiles {
		p := s.profiles[id]
		out = append(out, &p)
	}
	return out, nil
}

func (s *ProfileStore) DeleteProfile(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	return nil
}
