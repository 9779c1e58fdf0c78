// Package server provides the HTTP REST API for the interview agent.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jonathan/interview-agent/internal/db"
	"github.com/jonathan/interview-agent/internal/generation"
	"github.com/jonathan/interview-agent/internal/interview"
	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/media"
	"github.com/jonathan/interview-agent/internal/observability/logging"
	"github.com/jonathan/interview-agent/internal/observability/metrics"
	"github.com/jonathan/interview-agent/internal/server/ratelimit"
	"github.com/jonathan/interview-agent/internal/voice"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	svc         *interview.Service
	media       *media.Store
	llmClient   llm.Client
	rateLimiter *ratelimit.Limiter
	log         zerolog.Logger
}

// Config holds server configuration
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string
	AudioDir    string

	PythonPath     string
	VoiceScriptDir string

	TranscribeTimeout time.Duration
	SynthesizeTimeout time.Duration
	GenerateTimeout   time.Duration

	Logger zerolog.Logger
}

// New creates a new server instance, connecting to the database and wiring
// the LLM, speech engine, and audio store into the orchestrator.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	engine := voice.NewEngine(voice.Config{
		PythonPath:        cfg.PythonPath,
		ScriptDir:         cfg.VoiceScriptDir,
		TranscribeTimeout: cfg.TranscribeTimeout,
		SynthesizeTimeout: cfg.SynthesizeTimeout,
	}, logging.WithComponent(cfg.Logger, "voice"))

	store := media.NewStore(cfg.AudioDir)

	svc := interview.NewService(interview.ServiceOptions{
		Sessions:    database,
		Questions:   database,
		Profiles:    database,
		Generator:   generation.NewGenerator(client),
		Evaluator:   generation.NewEvaluator(client),
		Transcriber: engine,
		Synthesizer: engine,
		Media:       store,
		Timeouts: interview.Timeouts{
			Generate:   cfg.GenerateTimeout,
			Transcribe: cfg.TranscribeTimeout,
			Synthesize: cfg.SynthesizeTimeout,
		},
		Logger: logging.WithComponent(cfg.Logger, "interview"),
	})

	s := &Server{
		db:        database,
		svc:       svc,
		media:     store,
		llmClient: client,
		log:       logging.WithComponent(cfg.Logger, "http"),
	}
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Answer uploads and end-of-session can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request router.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Interview lifecycle
	mux.HandleFunc("POST /interview/start", s.handleStart)
	mux.HandleFunc("GET /interview/all", s.handleListInterviews)
	mux.HandleFunc("GET /interview/{id}/next-question", s.handleNextQuestion)
	mux.HandleFunc("GET /interview/{id}/question-audio", s.handleQuestionAudio)
	mux.HandleFunc("POST /interview/{id}/answer", s.handleAnswer)
	mux.HandleFunc("POST /interview/{id}/rephrase", s.handleRephrase)
	mux.HandleFunc("POST /interview/{id}/end", s.handleEnd)
	mux.HandleFunc("GET /interview/{id}/result", s.handleResult)

	// Cached audio serving
	mux.HandleFunc("GET /audio/{folder}/{file}", s.handleAudioFile)

	// Role requirement CRUD
	mux.HandleFunc("POST /requirements", s.handleCreateRequirement)
	mux.HandleFunc("GET /requirements", s.handleListRequirements)
	mux.HandleFunc("GET /requirements/{id}", s.handleGetRequirement)
	mux.HandleFunc("DELETE /requirements/{id}", s.handleDeleteRequirement)

	// Operational
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-stop
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llmClient != nil {
		_ = s.llmClient.Close()
	}
	s.db.Close()
	s.log.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging and the request counter.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.Default.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a service error onto an HTTP response.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	s.errorResponse(w, HTTPStatus(err), err.Error())
}

// extractClientID extracts the client identifier from the request.
// For MVP, this uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())+1))
	s.jsonResponse(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limit_exceeded",
		"retry_after": int(info.RetryAfter.Seconds()) + 1,
	})
}
