package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/interview-agent/internal/generation"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/voice"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		sessionNotFound     *interview.SessionNotFoundError
		questionNotFound    *interview.QuestionNotFoundError
		requirementNotFound *interview.RequirementNotFoundError

		noOutstanding *interview.NoOutstandingQuestionError
		notRunning    *interview.SessionNotRunningError
		exhausted     *interview.AttemptsExhaustedError
		validation    *ErrValidation
		apiCall       *generation.APICallError
		parse         *generation.ParseError
		schema        *generation.SchemaError
		transcription *voice.TranscriptionError
		synthesis     *voice.SynthesisError
	)
	switch {
	case errors.As(err, &sessionNotFound), errors.As(err, &questionNotFound),
		errors.As(err, &requirementNotFound):
		return http.StatusNotFound
	case errors.As(err, &noOutstanding), errors.As(err, &notRunning), errors.As(err, &exhausted):
		return http.StatusConflict
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &apiCall), errors.As(err, &parse), errors.As(err, &schema),
		errors.As(err, &transcription), errors.As(err, &synthesis):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
