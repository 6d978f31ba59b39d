package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/lookup"
	"github.com/matzehuels/repertoire/pkg/rules"
)

type ctxKey int

const (
	graphKey ctxKey = iota
	sessionKey
)

// MoveView is a move as returned by the API.
type MoveView struct {
	SAN       string `json:"san"`
	UCI       string `json:"uci"`
	Leaves    int    `json:"leaves,omitempty"`
	Reachable int    `json:"reachable,omitempty"`
}

// StatsView is the body of GET /api/{color}/stats.
type StatsView struct {
	Color     string `json:"color"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Lines     int    `json:"lines"`
	Conflicts int    `json:"conflicts"`
}

// MissView describes where a move sequence left the graph.
type MissView struct {
	Index    int      `json:"index"`
	Move     string   `json:"move"`
	Expected []string `json:"expected"`
}

// PositionView is the body of GET /api/{color}/position.
type PositionView struct {
	Found      bool       `json:"found"`
	Path       []string   `json:"path"`
	FEN        string     `json:"fen,omitempty"`
	Own        bool       `json:"own"`
	Leaves     int        `json:"leaves,omitempty"`
	Moves      []MoveView `json:"moves,omitempty"`
	Miss       *MissView  `json:"miss,omitempty"`
	Transposed string     `json:"transposed,omitempty"`
}

// OriginsView is the body of GET /api/{color}/origins.
type OriginsView struct {
	FEN     string     `json:"fen"`
	Origins [][]string `json:"origins"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	colors := make([]string, 0, len(s.graphs))
	for _, c := range []rules.Color{rules.White, rules.Black} {
		if _, ok := s.graphs[c]; ok {
			colors = append(colors, c.String())
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "colors": colors})
}

func (s *Server) withGraph(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		color, err := rules.ParseColor(chi.URLParam(r, "color"))
		if err != nil {
			writeError(w, err)
			return
		}
		g, ok := s.graphs[color]
		if !ok {
			writeError(w, errors.New(errors.ErrCodeNotFound, "no %s repertoire loaded", color.Name()))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), graphKey, g)))
	})
}

func graphFrom(r *http.Request) *graph.Graph {
	return r.Context().Value(graphKey).(*graph.Graph)
}

// parseMoves reads the "moves" query parameter.
func parseMoves(r *http.Request) ([]string, error) {
	return parseMoveText(r.URL.Query().Get("moves"))
}

func parseMoveText(text string) ([]string, error) {
	moves, err := dataset.ParseLine(strings.ReplaceAll(text, ",", " "))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid moves")
	}
	return moves, nil
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	g := graphFrom(r)
	writeJSON(w, http.StatusOK, StatsView{
		Color:     g.Color().Name(),
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Lines:     g.Root().Leaves(),
		Conflicts: len(g.Conflicts()),
	})
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	g := graphFrom(r)
	moves, err := parseMoves(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := lookup.Resolve(g, moves)
	if err != nil {
		writeError(w, err)
		return
	}

	view := PositionView{Found: res.Found, Path: graph.SANs(res.Path)}
	if res.Found {
		view.FEN = res.Node.Position.FEN()
		view.Own = g.IsOwn(res.Node)
		view.Leaves = res.Node.Leaves()
		view.Moves = moveViews(res.Node)
	}
	if res.Miss != nil {
		view.Miss = &MissView{Index: res.Miss.Index, Move: res.Miss.Move.SAN, Expected: res.Miss.Expected}
	}
	if res.Transposed != nil {
		view.Transposed = res.Transposed.Position.FEN()
	}
	writeJSON(w, http.StatusOK, view)
}

func moveViews(n *graph.Node) []MoveView {
	edges := n.Edges()
	out := make([]MoveView, len(edges))
	for i, e := range edges {
		out[i] = MoveView{
			SAN:       e.Move.SAN,
			UCI:       e.Move.UCI,
			Leaves:    e.To.Leaves(),
			Reachable: e.To.Reachable(),
		}
	}
	return out
}

func (s *Server) handleOrigins(w http.ResponseWriter, r *http.Request) {
	g := graphFrom(r)
	moves, err := parseMoves(r)
	if err != nil {
		writeError(w, err)
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
	}

	res, err := lookup.Resolve(g, moves)
	if err != nil {
		writeError(w, err)
		return
	}
	n := res.Node
	if !res.Found {
		n = res.Transposed
	}
	if n == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "position is not in the repertoire"))
		return
	}

	origins := g.Origins(n, limit)
	view := OriginsView{FEN: n.Position.FEN(), Origins: make([][]string, len(origins))}
	for i, o := range origins {
		view.Origins[i] = graph.SANs(o)
	}
	writeJSON(w, http.StatusOK, view)
}
