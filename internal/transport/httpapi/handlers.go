package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/brick-arcade/internal/core"
	"github.com/vovakirdan/brick-arcade/internal/registry"
	"github.com/vovakirdan/brick-arcade/internal/session"
	"github.com/vovakirdan/brick-arcade/internal/storage"
)

const maxBodyBytes = 4 << 10

// startRequest is the object form of a start body.
type startRequest struct {
	Game   string `json:"game"`
	GameID int    `json:"gameId"`
}

// actionRequest is the object form of an action body.
type actionRequest struct {
	Action *core.Action `json:"action"`
	Hold   bool         `json:"hold"`
}

func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

// parseSelector accepts a bare number (1 snake, 2 tetris, 3 race), a bare
// string, or {"game": ...} / {"gameId": n}.
func parseSelector(body []byte) (string, error) {
	var n int
	if err := json.Unmarshal(body, &n); err == nil {
		return strconv.Itoa(n), nil
	}
	var name string
	if err := json.Unmarshal(body, &name); err == nil {
		return name, nil
	}
	var req startRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", fmt.Errorf("httpapi: invalid start body: %w", err)
	}
	if req.Game != "" {
		return req.Game, nil
	}
	return strconv.Itoa(req.GameID), nil
}

// parseAction accepts a bare action (name or ordinal) or {"action": ..., "hold": bool}.
func parseAction(body []byte) (core.Action, bool, error) {
	var a core.Action
	if err := json.Unmarshal(body, &a); err == nil {
		return a, false, nil
	}
	var req actionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return core.ActionNothing, false, fmt.Errorf("httpapi: invalid action body: %w", err)
	}
	if req.Action == nil {
		return core.ActionNothing, false, errors.New("httpapi: missing action")
	}
	return *req.Action, req.Hold, nil
}

func (s *Server) handleLegacyStart(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Cannot read request body")
		return
	}
	selector, err := parseSelector(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid game ID")
		return
	}

	sess, err := s.sessions.Start(session.DefaultID, selector)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleLegacyAction(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, session.DefaultID, true)
}

func (s *Server) handleLegacyState(w http.ResponseWriter, r *http.Request) {
	s.poll(w, session.DefaultID, true)
}

// submit buffers an action for the session. Single-game routes report a
// missing default session as "no game" rather than 404.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, id string, legacy bool) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Cannot read request body")
		return
	}
	action, hold, err := parseAction(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		if legacy {
			err = session.ErrNoActiveGame
		}
		s.writeSessionError(w, err)
		return
	}
	if err := sess.Submit(action, hold); err != nil {
		s.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) poll(w http.ResponseWriter, id string, legacy bool) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		if legacy {
			err = session.ErrNoActiveGame
		}
		s.writeSessionError(w, err)
		return
	}
	info, err := sess.Poll()
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, registry.List())
}

type gameScores struct {
	Game      string               `json:"game"`
	HighScore int                  `json:"high_score"`
	Top       []storage.ScoreEntry `json:"top,omitempty"`
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	if s.scores == nil {
		s.writeJSON(w, http.StatusOK, []gameScores{})
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			s.writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	var ids []string
	if game := strings.TrimSpace(r.URL.Query().Get("game")); game != "" {
		id, err := registry.Resolve(game)
		if err != nil {
			s.writeSessionError(w, err)
			return
		}
		ids = []string{id}
	} else {
		for _, info := range registry.List() {
			ids = append(ids, info.ID)
		}
	}

	out := make([]gameScores, 0, len(ids))
	for _, id := range ids {
		top, err := s.scores.TopScores(r.Context(), id, limit)
		if err != nil {
			s.logger.Warn("cannot list scores", "game", id, "err", err)
		}
		out = append(out, gameScores{Game: id, HighScore: s.scores.HighScore(id), Top: top})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Cannot read request body")
		return
	}
	selector, err := parseSelector(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid game ID")
		return
	}

	sess, err := s.sessions.Create(selector)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, sess.Info())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(list),
		"sessions": list,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSessionAction(w http.ResponseWriter, r *http.Request) {
	s.submit(w, r, chi.URLParam(r, "id"), false)
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	s.poll(w, chi.URLParam(r, "id"), false)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		id = session.DefaultID
	}
	if _, err := s.sessions.Get(id); err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.hub.ServeWS(w, r, id)
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Failed to read request")
		return
	}
	defer r.Body.Close()

	response := s.mcp.HandleMessage(r.Context(), body)
	if response == nil {
		// notifications carry no response
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}
