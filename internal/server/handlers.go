package server

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/interview"
)

// maxUploadBytes bounds multipart uploads: resumes and single-answer
// recordings comfortably fit.
const maxUploadBytes = 32 << 20

// StartResponse represents the response for /interview/start
type StartResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	Questions int    `json:"questions"`
}

// QuestionResponse represents a served question
type QuestionResponse struct {
	Done       bool   `json:"done"`
	QuestionID string `json:"question_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	AudioURL   string `json:"audio_url,omitempty"`
}

// AnswerResponse represents the acknowledgment for a submitted answer
type AnswerResponse struct {
	Reply string `json:"reply"`
}

// RephraseResponse represents a rephrased question
type RephraseResponse struct {
	Text string `json:"text"`
}

// ResultQuestion is one question's slice of the interview result.
type ResultQuestion struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	AnswerText string `json:"answer_text"`
	Score      *int   `json:"score"`
	Feedback   string `json:"feedback,omitempty"`
}

// ResultResponse represents the response for /interview/{id}/result
type ResultResponse struct {
	SessionID      string           `json:"session_id"`
	Status         string           `json:"status"`
	TotalScore     int              `json:"total_score"`
	EvaluatedCount int              `json:"evaluated_count"`
	FinalFeedback  string           `json:"final_feedback,omitempty"`
	Questions      []ResultQuestion `json:"questions"`
}

// handleStart begins a new interview from a multipart form carrying the
// resume and candidate details.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	resumeText := r.FormValue("resume_text")
	if file, _, err := r.FormFile("resume"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "failed to read resume upload")
			return
		}
		resumeText = string(data)
	}
	if strings.TrimSpace(resumeText) == "" {
		s.serviceError(w, &ErrValidation{Field: "resume", Message: "resume file or resume_text is required"})
		return
	}

	userID := uuid.New()
	if v := r.FormValue("user_id"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			s.serviceError(w, &ErrValidation{Field: "user_id", Message: "must be a UUID"})
			return
		}
		userID = parsed
	}

	var requirementID *uuid.UUID
	if v := r.FormValue("requirement_id"); v != "" {
		parsed, err := uuid.Parse(v)
		if err != nil {
			s.serviceError(w, &ErrValidation{Field: "requirement_id", Message: "must be a UUID"})
			return
		}
		requirementID = &parsed
	}

	sess, err := s.svc.StartInterview(r.Context(), interview.StartParams{
		UserID:         userID,
		CandidateName:  r.FormValue("name"),
		CandidateEmail: r.FormValue("email"),
		ResumeText:     resumeText,
		RequirementID:  requirementID,
	})
	if err != nil {
		s.serviceError(w, err)
		return
	}

	qs, err := s.svc.QuestionsForSession(r.Context(), sess.ID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, StartResponse{
		SessionID: sess.ID.String(),
		Status:    string(sess.Status),
		Questions: len(qs),
	})
}

// handleNextQuestion serves the session's next (or still outstanding)
// question.
func (s *Server) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	q, err := s.svc.NextQuestion(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if q == nil {
		s.jsonResponse(w, http.StatusOK, QuestionResponse{Done: true})
		return
	}

	s.jsonResponse(w, http.StatusOK, QuestionResponse{
		QuestionID: q.ID.String(),
		Text:       q.Text,
		Category:   q.Category,
		Difficulty: string(q.Difficulty),
		AudioURL:   fmt.Sprintf("/interview/%s/question-audio", sessionID),
	})
}

// handleQuestionAudio streams the audio for the session's outstanding
// question, synthesizing it on demand when pre-generation has not caught up.
func (s *Server) handleQuestionAudio(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	sess, err := s.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	if sess.CurrentQuestionID == nil {
		s.serviceError(w, &interview.NoOutstandingQuestionError{SessionID: sessionID})
		return
	}

	path, err := s.svc.EnsureQuestionAudio(r.Context(), sessionID, *sess.CurrentQuestionID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

// handleAnswer accepts the candidate's recorded answer for the outstanding
// question and returns a short filler acknowledgment.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		s.serviceError(w, &ErrValidation{Field: "audio", Message: "audio file is required"})
		return
	}
	defer file.Close()

	reply, err := s.svc.SubmitAnswer(r.Context(), sessionID, file)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, AnswerResponse{Reply: reply})
}

// handleRephrase re-issues the outstanding question in simpler words.
func (s *Server) handleRephrase(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	text, err := s.svc.RephraseCurrent(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, RephraseResponse{Text: text})
}

// handleEnd finishes the interview. Results are processed in the background;
// the response returns as soon as the session is marked COMPLETED.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := s.svc.EndInterview(r.Context(), sessionID); err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusAccepted, map[string]string{
		"session_id": sessionID.String(),
		"status":     string(interview.StatusCompleted),
	})
}

// handleResult returns the session's scores, transcripts, and summary.
// Questions still awaiting transcription carry the pending marker.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	sess, err := s.svc.GetSession(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	qs, err := s.svc.QuestionsForSession(r.Context(), sessionID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	resp := ResultResponse{
		SessionID:      sess.ID.String(),
		Status:         string(sess.Status),
		TotalScore:     sess.TotalScore,
		EvaluatedCount: sess.EvaluatedCount,
		FinalFeedback:  sess.FinalFeedback,
		Questions:      make([]ResultQuestion, 0, len(qs)),
	}
	for _, q := range qs {
		resp.Questions = append(resp.Questions, ResultQuestion{
			QuestionID: q.ID.String(),
			Text:       q.Text,
			Category:   q.Category,
			Difficulty: string(q.Difficulty),
			AnswerText: q.AnswerText,
			Score:      q.Score,
			Feedback:   q.Feedback,
		})
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListInterviews returns all sessions.
func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.svc.ListSessions(r.Context())
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sessions)
}

// handleAudioFile serves a stored audio file from the session cache.
func (s *Server) handleAudioFile(w http.ResponseWriter, r *http.Request) {
	folder := r.PathValue("folder")
	file := r.PathValue("file")

	path, err := s.media.Resolve(folder, file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if filepath.Ext(path) != ".wav" {
		s.errorResponse(w, http.StatusBadRequest, "only wav audio is served")
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, path)
}

// pathUUID parses a UUID path segment, writing a 400 on failure.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(key))
	if err != nil {
		s.serviceError(w, &ErrValidation{Field: key, Message: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}
