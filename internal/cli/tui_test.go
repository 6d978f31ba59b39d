package cli

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/explore"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/history"
	"github.com/matzehuels/repertoire/pkg/practice"
	"github.com/matzehuels/repertoire/pkg/rules"
)

func buildGraph(t *testing.T, color rules.Color, lines ...string) *graph.Graph {
	t.Helper()
	var ls []dataset.Line
	for i, l := range lines {
		moves, err := dataset.ParseLine(l)
		if err != nil {
			t.Fatal(err)
		}
		ls = append(ls, dataset.Line{Source: "test", Number: i + 1, Moves: moves})
	}
	g, _, err := graph.Build(context.Background(), color, ls)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func whiteGraph(t *testing.T) *graph.Graph {
	return buildGraph(t, rules.White, "e4 e5 Nf3", "e4 c5 Nf3", "d4 d5 c4")
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func sendExplore(t *testing.T, m ExploreModel, keys ...string) ExploreModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(ExploreModel)
	}
	return m
}

func pathOf(m ExploreModel) []string {
	return graph.SANs(m.Explorer.Path())
}

func TestExploreModelNavigation(t *testing.T) {
	m := NewExploreModel(explore.New(whiteGraph(t)))
	if got := m.Choices(); len(got) != 2 || got[0].Move.SAN != "e4" {
		t.Fatalf("root choices = %v", got)
	}

	m = sendExplore(t, m, "down")
	if m.Cursor != 1 {
		t.Errorf("Cursor after down = %d", m.Cursor)
	}
	m = sendExplore(t, m, "down") // clamped
	if m.Cursor != 1 {
		t.Errorf("Cursor past the end = %d", m.Cursor)
	}
	m = sendExplore(t, m, "k", "enter")
	if got := pathOf(m); !slices.Equal(got, []string{"e4"}) {
		t.Fatalf("path after enter = %v", got)
	}
	var sans []string
	for _, ch := range m.Choices() {
		sans = append(sans, ch.Move.SAN)
	}
	if !slices.Equal(sans, []string{"c5", "e5"}) {
		t.Errorf("choices after e4 = %v", sans)
	}

	m = sendExplore(t, m, "l", "l")
	if got := pathOf(m); !slices.Equal(got, []string{"e4", "c5", "Nf3"}) {
		t.Errorf("path = %v", got)
	}
	if len(m.Choices()) != 0 || !strings.Contains(m.View(), "End of line") {
		t.Error("leaf should show end of line")
	}
	m = sendExplore(t, m, "enter") // nothing to play
	if len(pathOf(m)) != 3 {
		t.Errorf("enter at a leaf moved the cursor")
	}

	m = sendExplore(t, m, "left", "h")
	if got := pathOf(m); !slices.Equal(got, []string{"e4"}) {
		t.Errorf("path after back = %v", got)
	}
	m = sendExplore(t, m, "r")
	if len(pathOf(m)) != 0 {
		t.Errorf("path after reset = %v", pathOf(m))
	}
}

func TestExploreModelTypedMoves(t *testing.T) {
	m := NewExploreModel(explore.New(whiteGraph(t)))

	m.play("d4 d5")
	if got := pathOf(m); !slices.Equal(got, []string{"d4", "d5"}) {
		t.Fatalf("path = %v", got)
	}

	m.play("c3")
	if !strings.Contains(m.Status, "not in the repertoire") {
		t.Errorf("Status = %q", m.Status)
	}
	m.play("Ke2")
	if m.Status == "" {
		t.Error("illegal move should set a status")
	}

	m.Explorer.Reset()
	m.play("e4 e5 Nc3")
	if len(pathOf(m)) != 0 {
		t.Errorf("failed sequence should restore the cursor, path = %v", pathOf(m))
	}

	// Typing mode collects input until enter; esc cancels.
	m = sendExplore(t, m, "/")
	if !m.typing {
		t.Fatal("/ should open the move input")
	}
	m = sendExplore(t, m, "esc")
	if m.typing {
		t.Error("esc should close the move input")
	}
	m = sendExplore(t, m, "m", "e2e4", "enter")
	if got := pathOf(m); !slices.Equal(got, []string{"e4"}) {
		t.Errorf("path after typed e2e4 = %v", got)
	}
}

func TestExploreModelQuitAndView(t *testing.T) {
	m := NewExploreModel(explore.New(whiteGraph(t)))
	view := m.View()
	for _, want := range []string{"white", "start", "e4", "d4"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if _, cmd := m.Update(key("q")); !isQuit(cmd) {
		t.Error("q should quit")
	}
}

type memoryStore struct {
	mu      sync.Mutex
	records []history.Record
}

func (s *memoryStore) Record(_ context.Context, rec history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *memoryStore) Recent(context.Context, string, int) ([]history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records), nil
}

func (s *memoryStore) Close() error { return nil }

func TestPracticeModelRound(t *testing.T) {
	store := &memoryStore{}
	m := NewPracticeModel(context.Background(), practice.New(whiteGraph(t)), store)
	if m.Session.State() != practice.UserTurn {
		t.Fatalf("initial state = %v", m.Session.State())
	}

	m, _ = m.submit("e5")
	if m.Status == "" || m.Session.State() != practice.UserTurn {
		t.Errorf("illegal move: status=%q state=%v", m.Status, m.Session.State())
	}

	m, cmd := m.submit("e4")
	if cmd != nil || m.Session.State() != practice.UserTurn || len(m.Session.Played()) != 2 {
		t.Fatalf("after e4: state=%v played=%v", m.Session.State(), m.Session.Played())
	}
	m, cmd = m.submit("g1f3")
	if m.Session.State() != practice.Success {
		t.Fatalf("after Nf3: state=%v", m.Session.State())
	}
	if m.Rounds != 1 || m.Wins != 1 {
		t.Errorf("Rounds=%d Wins=%d", m.Rounds, m.Wins)
	}
	if cmd == nil {
		t.Fatal("finished round should return a record command")
	}
	next, _ := m.Update(cmd())
	m = next.(PracticeModel)
	if len(store.records) != 1 || store.records[0].Outcome != "success" {
		t.Errorf("records = %+v", store.records)
	}
	if !strings.Contains(m.View(), "End of line") {
		t.Error("View() should report the finished line")
	}

	next, _ = m.Update(key("enter"))
	m = next.(PracticeModel)
	if m.Session.State() != practice.UserTurn || len(m.Session.Played()) != 0 {
		t.Fatalf("restart: state=%v played=%v", m.Session.State(), m.Session.Played())
	}

	m, cmd = m.submit("c4")
	if m.Session.State() != practice.Failed || cmd == nil {
		t.Fatalf("wrong move: state=%v", m.Session.State())
	}
	if m.Rounds != 2 || m.Wins != 1 {
		t.Errorf("Rounds=%d Wins=%d", m.Rounds, m.Wins)
	}
	cmd()
	if got := store.records[1].Expected; !slices.Equal(got, []string{"d4", "e4"}) {
		t.Errorf("expected moves = %v", got)
	}
	view := m.View()
	if !strings.Contains(view, "c4 is not in your repertoire") || !strings.Contains(view, "d4, e4") {
		t.Errorf("View() = %q", view)
	}

	if _, cmd := m.Update(key("q")); !isQuit(cmd) {
		t.Error("q after a round should quit")
	}
}

func TestPracticeModelComputerMovesFirst(t *testing.T) {
	g := buildGraph(t, rules.Black, "e4 c5 Nf3 d6")
	m := NewPracticeModel(context.Background(), practice.New(g), nil)
	if got := graph.SANs(m.Session.Played()); !slices.Equal(got, []string{"e4"}) {
		t.Fatalf("played = %v", got)
	}
	if m.Session.State() != practice.UserTurn {
		t.Errorf("state = %v", m.Session.State())
	}
}

func TestPracticeModelStartAtLeaf(t *testing.T) {
	g := whiteGraph(t)
	leaf := g.Root()
	for !leaf.IsLeaf() {
		leaf = leaf.Edges()[0].To
	}
	m := NewPracticeModel(context.Background(), practice.New(g, practice.WithStart(leaf)), nil)
	if m.Session.State() != practice.Success || m.Rounds != 1 {
		t.Errorf("state=%v rounds=%d", m.Session.State(), m.Rounds)
	}
	if m.Init() == nil {
		t.Error("Init() should record the finished round")
	}
}

func TestPracticeModelRecordError(t *testing.T) {
	m := NewPracticeModel(context.Background(), practice.New(whiteGraph(t)), nil)
	next, _ := m.Update(roundRecordedMsg{err: context.Canceled})
	if got := next.(PracticeModel).Status; !strings.Contains(got, "could not save round") {
		t.Errorf("Status = %q", got)
	}
}
