package interview

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionNotFoundError indicates the session does not exist.
type SessionNotFoundError struct {
	ID uuid.UUID
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

// QuestionNotFoundError indicates a referenced question does not exist.
type QuestionNotFoundError struct {
	ID uuid.UUID
}

func (e *QuestionNotFoundError) Error() string {
	return fmt.Sprintf("question not found: %s", e.ID)
}

// RequirementNotFoundError indicates a referenced role requirement does not
// exist.
type RequirementNotFoundError struct {
	ID uuid.UUID
}

func (e *RequirementNotFoundError) Error() string {
	return fmt.Sprintf("requirement not found: %s", e.ID)
}

// NoOutstandingQuestionError indicates an answer was submitted while no
// question was outstanding for the session.
type NoOutstandingQuestionError struct {
	SessionID uuid.UUID
}

func (e *NoOutstandingQuestionError) Error() string {
	return fmt.Sprintf("session %s has no outstanding question", e.SessionID)
}

// SessionNotRunningError indicates an operation that requires a RUNNING
// session was attempted in another state.
type SessionNotRunningError struct {
	SessionID uuid.UUID
	Status    Status
}

func (e *SessionNotRunningError) Error() string {
	return fmt.Sprintf("session %s is %s, not RUNNING", e.SessionID, e.Status)
}

// AttemptsExhaustedError indicates the rephrase cap for the outstanding
// question has been reached.
type AttemptsExhaustedError struct {
	SessionID  uuid.UUID
	QuestionID uuid.UUID
	Attempts   int
}

func (e *AttemptsExhaustedError) Error() string {
	return fmt.Sprintf("question %s in session %s already rephrased %d times", e.QuestionID, e.SessionID, e.Attempts)
}
