// Package httpapi exposes game sessions over HTTP: the single-game routes
// used by the web and console clients, per-session REST routes, a
// websocket snapshot stream and an MCP endpoint for agents.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vovakirdan/brick-arcade/internal/registry"
	"github.com/vovakirdan/brick-arcade/internal/session"
	"github.com/vovakirdan/brick-arcade/internal/storage"
)

// ScoreReader is the read side of the score store the API exposes.
type ScoreReader interface {
	HighScore(gameID string) int
	TopScores(ctx context.Context, gameID string, limit int) ([]storage.ScoreEntry, error)
}

// Config configures a Server.
type Config struct {
	Sessions  *session.Manager
	Scores    ScoreReader   // optional
	Logger    *log.Logger   // optional
	PollEvery time.Duration // websocket push interval; 100ms when zero
}

// Server handles HTTP requests.
type Server struct {
	sessions *session.Manager
	scores   ScoreReader
	logger   *log.Logger
	hub      *Hub
	mcp      *server.MCPServer
}

// NewServer creates a server. Call Run to start the websocket hub.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 100 * time.Millisecond
	}
	s := &Server{
		sessions: cfg.Sessions,
		scores:   cfg.Scores,
		logger:   cfg.Logger,
		hub:      NewHub(cfg.Sessions, cfg.PollEvery, cfg.Logger),
	}
	s.mcp = s.newMCPServer()
	return s
}

// Run drives the websocket hub until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.hub.Run(ctx)
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		// single-game routes, bound to the default session
		r.Post("/game/start", s.handleLegacyStart)
		r.Post("/game/actions", s.handleLegacyAction)
		r.Get("/game/state", s.handleLegacyState)

		r.Get("/games", s.handleListGames)
		r.Get("/scores", s.handleScores)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/", s.handleListSessions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/actions", s.handleSessionAction)
				r.Get("/state", s.handleSessionState)
			})
		})
	})

	r.Get("/ws", s.handleWS)
	r.Post("/mcp", s.handleMCP)

	return r
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("cannot encode response", "err", err)
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeSessionError maps session and registry errors to HTTP statuses.
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, session.ErrNoActiveGame):
		s.writeError(w, http.StatusBadRequest, "No game is running")
	case errors.Is(err, registry.ErrUnknownGame):
		s.writeError(w, http.StatusBadRequest, "Invalid game ID")
	default:
		s.logger.Error("request failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
