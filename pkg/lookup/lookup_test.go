package lookup

import (
	"context"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/rules"
)

func buildGraph(t *testing.T, texts ...string) *graph.Graph {
	t.Helper()
	lines := make([]dataset.Line, len(texts))
	for i, text := range texts {
		lines[i] = dataset.Line{Number: i + 1, Moves: strings.Fields(text)}
	}
	g, _, err := graph.Build(context.Background(), rules.White, lines, graph.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestResolve(t *testing.T) {
	g := buildGraph(t, "d4 Nf6 c4 e6 Nc3", "d4 d5 c4 Nf6 Nc3", "d4 Nf6 c4 g6 Nc3")

	tests := []struct {
		name       string
		moves      string
		found      bool
		missIndex  int
		missMove   string
		expected   []string
		transposed bool
	}{
		{name: "empty", moves: "", found: true},
		{name: "full line", moves: "d4 Nf6 c4 e6 Nc3", found: true},
		{name: "prefix", moves: "d4 d5", found: true},
		{name: "uci", moves: "d2d4 g8f6", found: true},
		{name: "first move", moves: "e4 e5", missIndex: 0, missMove: "e4", expected: []string{"d4"}},
		{name: "opponent deviation", moves: "d4 Nf6 c4 c5", missIndex: 3, missMove: "c5", expected: []string{"d5", "e6", "g6"}},
		{name: "transposition", moves: "c4 e6 d4 Nf6", missIndex: 0, missMove: "c4", expected: []string{"d4"}, transposed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(g, strings.Fields(tt.moves))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if res.Found != tt.found {
				t.Fatalf("Found = %v, want %v", res.Found, tt.found)
			}
			if tt.found {
				if res.Node == nil || res.Miss != nil {
					t.Errorf("found result = %+v", res)
				}
				return
			}
			if res.Miss == nil {
				t.Fatal("Miss = nil")
			}
			if res.Miss.Index != tt.missIndex || res.Miss.Move.SAN != tt.missMove {
				t.Errorf("Miss = %d %s, want %d %s", res.Miss.Index, res.Miss.Move.SAN, tt.missIndex, tt.missMove)
			}
			if !slices.Equal(res.Miss.Expected, tt.expected) {
				t.Errorf("Expected = %v, want %v", res.Miss.Expected, tt.expected)
			}
			if (res.Transposed != nil) != tt.transposed {
				t.Errorf("Transposed = %v, want %v", res.Transposed != nil, tt.transposed)
			}
			if !errors.Is(res.Miss.Err(), errors.ErrCodeUnknownMove) {
				t.Error("Miss.Err() should be an UnknownMoveError")
			}
			if len(res.Path) != len(strings.Fields(tt.moves)) {
				t.Errorf("len(Path) = %d", len(res.Path))
			}
		})
	}
}

func TestResolveIllegal(t *testing.T) {
	g := buildGraph(t, "d4 Nf6 c4")

	tests := []struct {
		moves string
		ply   int
	}{
		{"d4 Nf6 Qd5", 2},
		{"e4 e5 Ke3", 2},
		{"Ke2", 0},
	}
	for _, tt := range tests {
		_, err := Resolve(g, strings.Fields(tt.moves))
		var ime *errors.IllegalMoveError
		if !errors.As(err, &ime) {
			t.Errorf("Resolve(%q) error = %v, want IllegalMoveError", tt.moves, err)
			continue
		}
		if ime.Ply != tt.ply {
			t.Errorf("Resolve(%q) ply = %d, want %d", tt.moves, ime.Ply, tt.ply)
		}
	}
}
