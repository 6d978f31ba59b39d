package practice

import (
	"context"
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/observability"
	"github.com/matzehuels/repertoire/pkg/rules"
)

func buildGraph(t *testing.T, color rules.Color, texts ...string) *graph.Graph {
	t.Helper()
	lines := make([]dataset.Line, len(texts))
	for i, text := range texts {
		lines[i] = dataset.Line{Number: i + 1, Moves: strings.Fields(text)}
	}
	g, _, err := graph.Build(context.Background(), color, lines, graph.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func seeded() Option { return WithRand(rand.New(rand.NewPCG(1, 2))) }

func mustStep(t *testing.T, s *Session) (rules.Move, bool) {
	t.Helper()
	mv, moved, err := s.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	return mv, moved
}

func TestFullRound(t *testing.T) {
	g := buildGraph(t, rules.White, "e4 e5 Nf3", "e4 c5 Nf3 d6 d4")
	s := New(g, seeded())

	if s.State() != ComputerTurn {
		t.Fatalf("initial state = %v, want %v", s.State(), ComputerTurn)
	}
	if _, moved := mustStep(t, s); moved {
		t.Fatal("computer moved for the user")
	}
	if s.State() != UserTurn {
		t.Fatalf("state = %v, want %v", s.State(), UserTurn)
	}

	answers := map[string]string{"e4": "e4", "e5": "Nf3", "c5": "Nf3", "d6": "d4"}
	guess := "e4"
	for i := 0; i < 10 && !s.State().Done(); i++ {
		switch s.State() {
		case UserTurn:
			ok, err := s.Guess(guess)
			if err != nil || !ok {
				t.Fatalf("Guess(%s) = %v, %v", guess, ok, err)
			}
		case ComputerTurn:
			mv, moved := mustStep(t, s)
			if moved {
				guess = answers[mv.SAN]
			}
		}
	}
	if s.State() != Success {
		t.Fatalf("final state = %v, want %v", s.State(), Success)
	}
	if !s.Current().IsLeaf() {
		t.Error("successful round should end on a leaf")
	}

	r := s.Round()
	if r.Outcome != Success || r.Color != rules.White || r.Moves[0] != "e4" {
		t.Errorf("Round() = %+v", r)
	}
}

func TestWrongGuess(t *testing.T) {
	g := buildGraph(t, rules.White, "e4 e5 Nf3", "e4 c5 Nf3")
	s := New(g, seeded())
	mustStep(t, s)

	ok, err := s.Guess("d4")
	if err != nil || ok {
		t.Fatalf("Guess(d4) = %v, %v; want false, nil", ok, err)
	}
	if s.State() != Failed {
		t.Fatalf("state = %v, want %v", s.State(), Failed)
	}
	if !slices.Equal(s.Expected(), []string{"e4"}) {
		t.Errorf("Expected() = %v, want [e4]", s.Expected())
	}
	var unknown *errors.UnknownMoveError
	if !errors.As(s.Err(), &unknown) || unknown.Move != "d4" {
		t.Errorf("Err() = %v", s.Err())
	}
	if r := s.Round(); r.Guess != "d4" || r.Outcome != Failed {
		t.Errorf("Round() = %+v", r)
	}

	if _, _, err := s.Step(); err != ErrWrongState {
		t.Errorf("Step after failure = %v, want ErrWrongState", err)
	}

	s.Restart()
	if s.State() != ComputerTurn || s.Current() != g.Root() || len(s.Played()) != 0 {
		t.Error("Restart did not reset the round")
	}
	if s.Err() != nil {
		t.Error("Err() should be nil after Restart")
	}
}

func TestIllegalGuessKeepsState(t *testing.T) {
	g := buildGraph(t, rules.White, "e4 e5 Nf3")
	s := New(g, seeded())
	mustStep(t, s)

	_, err := s.Guess("Ke2")
	if !errors.Is(err, errors.ErrCodeIllegalMove) {
		t.Fatalf("Guess(Ke2) error = %v, want illegal move", err)
	}
	if s.State() != UserTurn || s.Current() != g.Root() || len(s.Played()) != 0 {
		t.Error("illegal guess changed the session")
	}
}

func TestGuessWrongState(t *testing.T) {
	g := buildGraph(t, rules.White, "e4 e5")
	s := New(g)
	if _, err := s.Guess("e4"); err != ErrWrongState {
		t.Errorf("Guess in ComputerTurn = %v, want ErrWrongState", err)
	}
}

func TestComputerMoveIntoLeaf(t *testing.T) {
	g := buildGraph(t, rules.Black, "e4 c5 Nf3")
	s := New(g, seeded())

	if mv, moved := mustStep(t, s); !moved || mv.SAN != "e4" {
		t.Fatalf("Step = %v, %v; want e4", mv, moved)
	}
	if ok, err := s.Guess("c5"); !ok || err != nil {
		t.Fatalf("Guess(c5) = %v, %v", ok, err)
	}
	if mv, moved := mustStep(t, s); !moved || mv.SAN != "Nf3" {
		t.Fatalf("Step = %v, %v; want Nf3", mv, moved)
	}
	if s.State() != ComputerTurn {
		t.Fatalf("state after move into leaf = %v, want %v", s.State(), ComputerTurn)
	}
	if _, moved := mustStep(t, s); moved {
		t.Error("computer moved from a leaf")
	}
	if s.State() != Success {
		t.Errorf("state = %v, want %v", s.State(), Success)
	}
}

func TestLeafStartSucceeds(t *testing.T) {
	g := buildGraph(t, rules.White)
	s := New(g)
	mustStep(t, s)
	if s.State() != Success {
		t.Errorf("state at leaf root = %v, want %v", s.State(), Success)
	}
}

func TestRandomnessCoverage(t *testing.T) {
	g := buildGraph(t, rules.Black, "e4 c5", "d4 Nf6", "c4 e5", "Nf3 d5")
	s := New(g, seeded())

	seen := map[string]int{}
	for range 400 {
		s.Restart()
		mv, moved := mustStep(t, s)
		if !moved {
			t.Fatal("computer did not move at the root")
		}
		seen[mv.SAN]++
	}
	for _, m := range []string{"e4", "d4", "c4", "Nf3"} {
		if seen[m] == 0 {
			t.Errorf("move %s never chosen: %v", m, seen)
		}
	}
}

func TestWithStart(t *testing.T) {
	g := buildGraph(t, rules.White, "e4 e5 Nf3", "e4 c5 Nf3")
	e4 := g.Root().Edges()[0].To
	s := New(g, WithStart(e4), seeded())

	if s.Start() != e4 || s.Current() != e4 {
		t.Fatal("session did not start at the given node")
	}
	if _, moved := mustStep(t, s); !moved {
		t.Fatal("computer should move from the start position")
	}
	if got := s.Round().Start; !slices.Equal(got, []string{"e4"}) {
		t.Errorf("Round().Start = %v, want [e4]", got)
	}
}

type recordingHooks struct {
	observability.NoopPracticeHooks
	outcomes []string
}

func (r *recordingHooks) OnRoundComplete(_ context.Context, _, outcome string, _ int) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestRoundHooks(t *testing.T) {
	rec := &recordingHooks{}
	observability.SetPracticeHooks(rec)
	defer observability.Reset()

	g := buildGraph(t, rules.White, "e4 e5")
	s := New(g, seeded())
	mustStep(t, s)
	_, _ = s.Guess("d4")

	if !slices.Equal(rec.outcomes, []string{"failed"}) {
		t.Errorf("outcomes = %v, want [failed]", rec.outcomes)
	}
}
