package coverage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/rules"
)

var quiet = log.New(io.Discard)

func buildWhite(t *testing.T, texts ...string) *graph.Graph {
	t.Helper()
	lines := make([]dataset.Line, len(texts))
	for i, s := range texts {
		lines[i] = dataset.Line{Number: i + 1, Moves: strings.Fields(s)}
	}
	g, _, err := graph.Build(context.Background(), rules.White, lines, graph.WithLogger(quiet))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

// fakeSource answers from a table keyed by the comma-joined UCI path.
type fakeSource struct {
	table map[string]map[string]float64
	calls []string
}

func (f *fakeSource) MoveProbabilities(_ context.Context, uci []string) (map[string]float64, error) {
	key := strings.Join(uci, ",")
	f.calls = append(f.calls, key)
	return f.table[key], nil
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func find(t *testing.T, r *Report, g *graph.Graph, moves string) Entry {
	t.Helper()
	pos := g.Engine().Start()
	for _, m := range strings.Fields(moves) {
		var err error
		pos, _, err = g.Engine().Apply(pos, m)
		if err != nil {
			t.Fatalf("Apply(%s): %v", m, err)
		}
	}
	for _, e := range r.Entries {
		if e.Key == pos.Key() {
			return e
		}
	}
	t.Fatalf("no entry for %q", moves)
	return Entry{}
}

func TestAnalyze(t *testing.T) {
	g := buildWhite(t, "e4 e5 Nf3", "e4 c5 Nf3")
	src := &fakeSource{table: map[string]map[string]float64{
		"e2e4": {"e7e5": 0.5, "c7c5": 0.3, "e7e6": 0.2},
	}}

	r, err := Analyze(context.Background(), g, src, WithLogger(quiet))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(r.Entries) != 7 {
		t.Errorf("entries = %d, want 7 (6 explored + 1 unexplored)", len(r.Entries))
	}
	if r.Queries != 3 {
		t.Errorf("queries = %d, want 3 (after e4 and both leaves)", r.Queries)
	}

	tests := []struct {
		moves    string
		prob     float64
		explored bool
	}{
		{"", 1, true},
		{"e4", 1, true},
		{"e4 e5", 0.5, true},
		{"e4 e5 Nf3", 0.5, true},
		{"e4 c5 Nf3", 0.3, true},
		{"e4 e6", 0.2, false},
	}
	for _, tt := range tests {
		e := find(t, r, g, tt.moves)
		if !approx(e.Probability, tt.prob) {
			t.Errorf("P(%q) = %v, want %v", tt.moves, e.Probability, tt.prob)
		}
		if e.Explored != tt.explored {
			t.Errorf("explored(%q) = %v, want %v", tt.moves, e.Explored, tt.explored)
		}
	}

	un := r.Unexplored()
	if len(un) != 1 {
		t.Fatalf("unexplored = %d, want 1", len(un))
	}
	if len(un[0].Origins) != 1 || strings.Join(un[0].Origins[0], " ") != "e4 e6" {
		t.Errorf("unexplored origins = %v", un[0].Origins)
	}

	if c := r.Covered(g); !approx(c, 0.8) {
		t.Errorf("Covered() = %v, want 0.8", c)
	}

	for i := 1; i < len(r.Entries); i++ {
		if r.Entries[i].Probability > r.Entries[i-1].Probability {
			t.Fatalf("entries not sorted by probability at %d", i)
		}
	}
}

func TestAnalyzeSkipsUnreachedPositions(t *testing.T) {
	g := buildWhite(t, "e4 e5 Nf3", "e4 c5 Nf3")
	src := &fakeSource{table: map[string]map[string]float64{
		"e2e4": {"e7e5": 1},
	}}

	r, err := Analyze(context.Background(), g, src, WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	for _, call := range src.calls {
		if strings.HasPrefix(call, "e2e4,c7c5") {
			t.Errorf("position after c5 has probability zero and should not be queried")
		}
	}
	if e := find(t, r, g, "e4 c5"); e.Probability != 0 {
		t.Errorf("P(e4 c5) = %v, want 0", e.Probability)
	}
}

func TestAnalyzeConflictSplitsEvenly(t *testing.T) {
	g := buildWhite(t, "e4 e5 Nf3", "e4 e5 Bc4")
	src := &fakeSource{table: map[string]map[string]float64{
		"e2e4": {"e7e5": 1},
	}}

	r, err := Analyze(context.Background(), g, src, WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range []string{"e4 e5 Nf3", "e4 e5 Bc4"} {
		if e := find(t, r, g, m); !approx(e.Probability, 0.5) {
			t.Errorf("P(%s) = %v, want 0.5", m, e.Probability)
		}
	}
}

func TestAnalyzeProgress(t *testing.T) {
	g := buildWhite(t, "e4 e5 Nf3")
	src := &fakeSource{table: map[string]map[string]float64{"e2e4": {"e7e5": 1}}}

	var calls, lastTotal int
	_, err := Analyze(context.Background(), g, src, WithLogger(quiet), WithProgress(func(done, total int) {
		calls++
		lastTotal = total
	}))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 || lastTotal != 2 {
		t.Errorf("progress calls = %d, total = %d; want 2, 2", calls, lastTotal)
	}
}

func TestAnalyzeSourceError(t *testing.T) {
	g := buildWhite(t, "e4 e5")
	boom := errors.New("boom")
	src := MoveSourceFunc(func(context.Context, []string) (map[string]float64, error) {
		return nil, boom
	})

	if _, err := Analyze(context.Background(), g, src, WithLogger(quiet)); !errors.Is(err, boom) {
		t.Errorf("Analyze error = %v, want wrapped boom", err)
	}
}

func TestAnalyzeCanceled(t *testing.T) {
	g := buildWhite(t, "e4 e5")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{}
	if _, err := Analyze(ctx, g, src, WithLogger(quiet)); !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze error = %v, want context.Canceled", err)
	}
}

func TestWriteText(t *testing.T) {
	g := buildWhite(t, "e4 e5")
	src := &fakeSource{table: map[string]map[string]float64{
		"e2e4": {"e7e5": 0.75, "c7c5": 0.25},
	}}
	r, err := Analyze(context.Background(), g, src, WithLogger(quiet))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"(UNEXPLORED)", "1. e4 c5", "Probability: 0.250000", "To move: white"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
