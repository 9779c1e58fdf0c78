package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/interview/mock"
	"github.com/jonathan/interview-agent/internal/media"
	"github.com/jonathan/interview-agent/internal/server/ratelimit"
)

// testServer wires the HTTP surface over in-memory stores and scripted
// collaborators so handlers can be exercised end to end.
type testServer struct {
	*Server
	handler   http.Handler
	evaluator *mock.Evaluator
	profiles  *mock.ProfileStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	evaluator := &mock.Evaluator{Score: 6}
	profiles := mock.NewProfileStore()
	store := media.NewStore(t.TempDir())

	svc := interview.NewService(interview.ServiceOptions{
		Sessions:    mock.NewSessionStore(),
		Questions:   mock.NewQuestionStore(),
		Profiles:    profiles,
		Generator:   &mock.Generator{},
		Evaluator:   evaluator,
		Transcriber: &mock.Transcriber{},
		Synthesizer: &mock.Synthesizer{},
		Media:       store,
		Logger:      zerolog.Nop(),
	})

	s := &Server{
		svc:         svc,
		media:       store,
		log:         zerolog.Nop(),
		rateLimiter: ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
	}

	return &testServer{
		Server:    s,
		handler:   s.withRateLimit(s.withCORS(s.routes())),
		evaluator: evaluator,
		profiles:  profiles,
	}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// startInterview drives POST /interview/start and returns the session ID.
func (ts *testServer) startInterview(t *testing.T) uuid.UUID {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("resume_text", "Seven years of Go and Postgres."))
	require.NoError(t, form.WriteField("name", "Ada Lovelace"))
	require.NoError(t, form.WriteField("email", "ada@example.com"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", "/interview/start", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := ts.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp StartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "RUNNING", resp.Status)
	assert.Equal(t, len(mock.DefaultSpecs), resp.Questions)

	id, err := uuid.Parse(resp.SessionID)
	require.NoError(t, err)
	return id
}

func (ts *testServer) submitAnswer(t *testing.T, sessionID uuid.UUID) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("audio", "answer.wav")
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader("RIFFfake-answer-audio"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", fmt.Sprintf("/interview/%s/answer", sessionID), &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return ts.do(t, req)
}

func TestHandleStart_RequiresResume(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("name", "Ada"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", "/interview/start", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := ts.do(t, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "resume")
}

func TestHandleStart_ResumeFileUpload(t *testing.T) {
	ts := newTestServer(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("resume", "resume.txt")
	require.NoError(t, err)
	_, err = io.WriteString(part, "Resume uploaded as a file.")
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", "/interview/start", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := ts.do(t, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestInterviewTurnFlow(t *testing.T) {
	ts := newTestServer(t)
	sessionID := ts.startInterview(t)

	// First question
	rec := ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/next-question", sessionID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var q QuestionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.False(t, q.Done)
	assert.Equal(t, mock.DefaultSpecs[0].Text, q.Text)
	assert.NotEmpty(t, q.AudioURL)

	// Answer it
	rec = ts.submitAnswer(t, sessionID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var ack AnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.NotEmpty(t, ack.Reply)

	// Answering again without an outstanding question conflicts
	rec = ts.submitAnswer(t, sessionID)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Drain the remaining questions
	for range mock.DefaultSpecs[1:] {
		rec = ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/next-question", sessionID), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		rec = ts.submitAnswer(t, sessionID)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Exhaustion reports done
	rec = ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/next-question", sessionID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.True(t, q.Done)
}

func TestHandleNextQuestion_UnknownSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/next-question", uuid.New()), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleNextQuestion_BadID(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest("GET", "/interview/not-a-uuid/next-question", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRephrase_CapReturnsConflict(t *testing.T) {
	ts := newTestServer(t)
	sessionID := ts.startInterview(t)

	rec := ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/next-question", sessionID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 3; i++ {
		rec = ts.do(t, httptest.NewRequest("POST", fmt.Sprintf("/interview/%s/rephrase", sessionID), nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp RephraseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Text, "Put differently")
	}

	rec = ts.do(t, httptest.NewRequest("POST", fmt.Sprintf("/interview/%s/rephrase", sessionID), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleQuestionAudio(t *testing.T) {
	ts := newTestServer(t)
	sessionID := ts.startInterview(t)

	// Without an outstanding question the request conflicts.
	rec := ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/question-audio", sessionID), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/next-question", sessionID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/question-audio", sessionID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	assert.NotZero(t, rec.Body.Len())
}

func TestEndAndResult(t *testing.T) {
	ts := newTestServer(t)
	sessionID := ts.startInterview(t)

	rec := ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/next-question", sessionID), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.submitAnswer(t, sessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, httptest.NewRequest("POST", fmt.Sprintf("/interview/%s/end", sessionID), nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	ts.svc.WaitForSession(sessionID)

	rec = ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/interview/%s/result", sessionID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "COMPLETED", resp.Status)
	assert.Equal(t, ts.evaluator.Score, resp.TotalScore)
	assert.Equal(t, 1, resp.EvaluatedCount)
	assert.NotEmpty(t, resp.FinalFeedback)
	require.Len(t, resp.Questions, len(mock.DefaultSpecs))

	var scored int
	for _, q := range resp.Questions {
		if q.Score != nil {
			scored++
		}
	}
	assert.Equal(t, 1, scored)
}

func TestHandleListInterviews(t *testing.T) {
	ts := newTestServer(t)
	ts.startInterview(t)
	ts.startInterview(t)

	rec := ts.do(t, httptest.NewRequest("GET", "/interview/all", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var sessions []interview.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	assert.Len(t, sessions, 2)
}

func TestHandleAudioFile(t *testing.T) {
	ts := newTestServer(t)
	sessionID := ts.startInterview(t)
	ts.svc.WaitForSession(sessionID)

	qs, err := ts.svc.QuestionsForSession(t.Context(), sessionID)
	require.NoError(t, err)
	path := ts.media.QuestionAudioPath("Ada Lovelace", sessionID, qs[0].ID)
	folder := filepath.Base(filepath.Dir(path))
	file := filepath.Base(path)

	rec := ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/audio/%s/%s", folder, file), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))

	// Traversal and non-wav files are rejected.
	rec = ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/audio/%s/..%%2f..%%2fsecrets.wav", folder), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = ts.do(t, httptest.NewRequest("GET", fmt.Sprintf("/audio/%s/notes.txt", folder), nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequirementsCRUD(t *testing.T) {
	ts := newTestServer(t)

	// Create
	body := `{"role":"Data Engineer","required_skills":["SQL","Spark"]}`
	req := httptest.NewRequest("POST", "/requirements", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created interview.RoleProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)

	// List
	rec = ts.do(t, httptest.NewRequest("GET", "/requirements", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []interview.RoleProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	// Get
	rec = ts.do(t, httptest.NewRequest("GET", "/requirements/"+created.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// Delete
	rec = ts.do(t, httptest.NewRequest("DELETE", "/requirements/"+created.ID.String(), nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, httptest.NewRequest("GET", "/requirements/"+created.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequirement_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing role", body: `{"required_skills":["SQL"]}`},
		{name: "empty skills", body: `{"role":"Data Engineer","required_skills":[]}`},
		{name: "malformed json", body: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/requirements", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := ts.do(t, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealthAndCORS(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Preflight short-circuits
	rec = ts.do(t, httptest.NewRequest("OPTIONS", "/interview/start", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
