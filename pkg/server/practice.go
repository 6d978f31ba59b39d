package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/history"
	"github.com/matzehuels/repertoire/pkg/lookup"
	"github.com/matzehuels/repertoire/pkg/practice"
)

type session struct {
	id string
	g  *graph.Graph

	lastUsed time.Time // guarded by Server.mu

	mu       sync.Mutex
	ps       *practice.Session
	recorded bool // current round already written to history
}

// SessionView is the state of a practice session.
type SessionView struct {
	ID       string   `json:"id"`
	Color    string   `json:"color"`
	State    string   `json:"state"`
	FEN      string   `json:"fen"`
	Start    []string `json:"start"`
	Played   []string `json:"played"`
	Expected []string `json:"expected,omitempty"`
}

// StepView is the body of a step response.
type StepView struct {
	SessionView
	Move *MoveView `json:"move,omitempty"`
}

// GuessView is the body of a guess response.
type GuessView struct {
	SessionView
	Correct bool `json:"correct"`
}

type newSessionRequest struct {
	Moves string `json:"moves"` // Start position, empty for the root
}

type guessRequest struct {
	Move string `json:"move"`
}

func (ss *session) view() SessionView {
	ps := ss.ps
	return SessionView{
		ID:       ss.id,
		Color:    ss.g.Color().Name(),
		State:    ps.State().String(),
		FEN:      ps.Current().Position.FEN(),
		Start:    graph.SANs(ss.g.FirstOrigin(ps.Start())),
		Played:   graph.SANs(ps.Played()),
		Expected: ps.Expected(),
	}
}

// sessionCount returns the number of live sessions.
func (s *Server) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// pruneSessions drops idle sessions. Callers hold s.mu.
func (s *Server) pruneSessions(now time.Time) {
	for id, ss := range s.sessions {
		if now.Sub(ss.lastUsed) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	g := graphFrom(r)

	var req newSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	moves, err := parseMoveText(req.Moves)
	if err != nil {
		writeError(w, err)
		return
	}

	var opts []practice.Option
	if len(moves) > 0 {
		res, err := lookup.Resolve(g, moves)
		if err != nil {
			writeError(w, err)
			return
		}
		if !res.Found {
			writeError(w, res.Miss.Err())
			return
		}
		opts = append(opts, practice.WithStart(res.Node))
	}

	now := s.now()
	ss := &session{
		id:       uuid.NewString(),
		g:        g,
		ps:       practice.New(g, opts...),
		lastUsed: now,
	}

	s.mu.Lock()
	s.pruneSessions(now)
	s.sessions[ss.id] = ss
	s.mu.Unlock()

	s.logger.Debug("practice session created", "id", ss.id, "color", g.Color().Name())
	writeJSON(w, http.StatusCreated, ss.view())
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		s.mu.Lock()
		ss, ok := s.sessions[id]
		if ok {
			ss.lastUsed = s.now()
		}
		s.mu.Unlock()
		if !ok || ss.g != graphFrom(r) {
			writeError(w, errors.New(errors.ErrCodeNotFound, "practice session %s not found", id))
			return
		}

		ss.mu.Lock()
		defer ss.mu.Unlock()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, ss)))
	})
}

func sessionFrom(r *http.Request) *session {
	return r.Context().Value(sessionKey).(*session)
}

// record stores a finished round once. Callers hold ss.mu.
func (s *Server) record(ctx context.Context, ss *session) {
	if ss.recorded || !ss.ps.State().Done() {
		return
	}
	ss.recorded = true
	if err := s.history.Record(ctx, history.FromRound(ss.ps.Round(), s.now())); err != nil {
		s.logger.Warn("failed to record practice round", "id", ss.id, "err", err)
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).view())
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	ss := sessionFrom(r)
	mv, moved, err := ss.ps.Step()
	if err != nil {
		writeError(w, err)
		return
	}
	s.record(r.Context(), ss)

	view := StepView{SessionView: ss.view()}
	if moved {
		view.Move = &MoveView{SAN: mv.SAN, UCI: mv.UCI}
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	ss := sessionFrom(r)
	var req guessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Move == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, `body must be {"move": "<san or uci>"}`))
		return
	}
	ok, err := ss.ps.Guess(req.Move)
	if err != nil {
		writeError(w, err)
		return
	}
	s.record(r.Context(), ss)
	writeJSON(w, http.StatusOK, GuessView{SessionView: ss.view(), Correct: ok})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	ss := sessionFrom(r)
	ss.ps.Restart()
	ss.recorded = false
	writeJSON(w, http.StatusOK, ss.view())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	ss := sessionFrom(r)
	s.mu.Lock()
	delete(s.sessions, ss.id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
