// Package api provides the text toner REST API server.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"texttoner/internal/auth"
	"texttoner/internal/database"
	"texttoner/internal/tone"
)

var validate = validator.New()

// Server is the API server.
type Server struct {
	db      *database.DB
	tokens  *auth.TokenManager
	engine  *tone.Engine
	limiter *clientLimiter
	log     *slog.Logger
	mux     *http.ServeMux
}

// Config holds API server configuration.
type Config struct {
	DB           *database.DB
	Tokens       *auth.TokenManager
	Engine       *tone.Engine
	AnalyzeRate  float64
	AnalyzeBurst int
	Logger       *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		db:      cfg.DB,
		tokens:  cfg.Tokens,
		engine:  cfg.Engine,
		limiter: newClientLimiter(cfg.AnalyzeRate, cfg.AnalyzeBurst),
		log:     cfg.Logger,
		mux:     http.NewServeMux(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	authMiddleware := auth.Middleware(s.tokens)

	// Public endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/v1/tone/analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /api/v1/tone/supported-tones", s.handleSupportedTones)

	// Protected endpoints
	s.mux.HandleFunc("GET /api/v1/auth/me", s.withAuth(authMiddleware, s.handleGetMe))
	s.mux.HandleFunc("POST /api/v1/auth/change-password", s.withAuth(authMiddleware, s.handleChangePassword))
	s.mux.HandleFunc("DELETE /api/v1/auth/deactivate", s.withAuth(authMiddleware, s.handleDeactivate))

	s.mux.HandleFunc("POST /api/v1/tone/messages", s.withAuth(authMiddleware, s.handleCreateMessage))
	s.mux.HandleFunc("GET /api/v1/tone/messages", s.withAuth(authMiddleware, s.handleListMessages))
	s.mux.HandleFunc("GET /api/v1/tone/messages/search", s.withAuth(authMiddleware, s.handleSearchMessages))
	s.mux.HandleFunc("GET /api/v1/tone/messages/tone/{tone}", s.withAuth(authMiddleware, s.handleListMessagesByTone))
	s.mux.HandleFunc("GET /api/v1/tone/messages/{messageID}", s.withAuth(authMiddleware, s.handleGetMessage))
	s.mux.HandleFunc("DELETE /api/v1/tone/messages/{messageID}", s.withAuth(authMiddleware, s.handleDeleteMessage))
	s.mux.HandleFunc("GET /api/v1/tone/stats", s.withAuth(authMiddleware, s.handleUserStats))

	s.mux.HandleFunc("POST /api/v1/feedback", s.withAuth(authMiddleware, s.handleCreateFeedback))
	s.mux.HandleFunc("GET /api/v1/feedback/stats/overall", s.withAuth(authMiddleware, s.handleFeedbackStats))
	s.mux.HandleFunc("GET /api/v1/feedback/user/me", s.withAuth(authMiddleware, s.handleListUserFeedback))
	s.mux.HandleFunc("GET /api/v1/feedback/message/{messageID}", s.withAuth(authMiddleware, s.handleListMessageFeedback))
	s.mux.HandleFunc("GET /api/v1/feedback/{feedbackID}", s.withAuth(authMiddleware, s.handleGetFeedback))
	s.mux.HandleFunc("PUT /api/v1/feedback/{feedbackID}", s.withAuth(authMiddleware, s.handleUpdateFeedback))
	s.mux.HandleFunc("DELETE /api/v1/feedback/{feedbackID}", s.withAuth(authMiddleware, s.handleDeleteFeedback))
}

func (s *Server) withAuth(middleware func(http.Handler) http.Handler, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware(http.HandlerFunc(handler)).ServeHTTP(w, r)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbConnected := s.db != nil && s.db.Ping(r.Context()) == nil
	modelLoaded := s.engine.Ready()

	status := "healthy"
	if !dbConnected {
		status = "unhealthy"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":             status,
		"database_connected": dbConnected,
		"model_loaded":       modelLoaded,
		"model_state":        s.engine.State().String(),
	})
}

func (s *Server) handleSupportedTones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"supported_tones": tone.Labels(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
