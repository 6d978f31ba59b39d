package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/repertoire/pkg/practice"
	"github.com/matzehuels/repertoire/pkg/rules"
)

func TestFromRound(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	rec := FromRound(practice.Round{
		Color:    rules.Black,
		Moves:    []string{"e4", "c5", "Nf3"},
		Outcome:  practice.Failed,
		Guess:    "e6",
		Expected: []string{"d6"},
	}, now)

	if rec.ID == "" {
		t.Error("record should get an ID")
	}
	if rec.Color != "b" || rec.Outcome != "failed" || rec.Guess != "e6" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Time.Location() != time.UTC || !rec.Time.Equal(now) {
		t.Errorf("time = %v, want %v in UTC", rec.Time, now)
	}
	if rec.Succeeded() {
		t.Error("failed round reported as success")
	}

	other := FromRound(practice.Round{Outcome: practice.Success}, now)
	if other.ID == rec.ID {
		t.Error("IDs should be unique")
	}
	if !other.Succeeded() {
		t.Error("successful round not reported as success")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "sub", "history.jsonl"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	if recs, err := s.Recent(ctx, "", 0); err != nil || len(recs) != 0 {
		t.Fatalf("Recent on empty store = %v, %v", recs, err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, color := range []string{"w", "b", "w", "w"} {
		rec := Record{ID: string(rune('a' + i)), Time: base.Add(time.Duration(i) * time.Minute), Color: color, Outcome: "success"}
		if err := s.Record(ctx, rec); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	all, err := s.Recent(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 || all[0].ID != "d" || all[3].ID != "a" {
		t.Errorf("Recent(all) order = %v", ids(all))
	}

	white, _ := s.Recent(ctx, "w", 2)
	if len(white) != 2 || white[0].ID != "d" || white[1].ID != "c" {
		t.Errorf("Recent(w, 2) = %v, want [d c]", ids(white))
	}

	black, _ := s.Recent(ctx, "b", 0)
	if len(black) != 1 || black[0].ID != "b" {
		t.Errorf("Recent(b) = %v, want [b]", ids(black))
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/data", "repertoire", "history.jsonl") {
		t.Errorf("DefaultPath() = %q", p)
	}
}

func TestSummarize(t *testing.T) {
	recs := []Record{
		{Outcome: "success"},
		{Outcome: "failed", Moves: []string{"e4", "c5"}, Expected: []string{"Nf3"}},
		{Outcome: "failed", Moves: []string{"e4", "c5"}, Expected: []string{"Nf3"}},
		{Outcome: "failed", Start: []string{"d4"}, Moves: []string{"d5"}, Expected: []string{"c4"}},
		{Outcome: "success"},
	}

	s := Summarize(recs, 0)
	if s.Rounds != 5 || s.Succeeded != 2 || s.Failed != 3 {
		t.Errorf("summary = %+v", s)
	}
	if s.Rate() != 0.4 {
		t.Errorf("Rate() = %v, want 0.4", s.Rate())
	}
	if len(s.Misses) != 2 {
		t.Fatalf("misses = %d, want 2", len(s.Misses))
	}
	if s.Misses[0].Count != 2 || s.Misses[0].Line[1] != "c5" {
		t.Errorf("top miss = %+v", s.Misses[0])
	}
	if got := s.Misses[1].Line; len(got) != 2 || got[0] != "d4" {
		t.Errorf("start moves should prefix the line, got %v", got)
	}

	if top := Summarize(recs, 1); len(top.Misses) != 1 {
		t.Errorf("top=1 kept %d misses", len(top.Misses))
	}
	if empty := Summarize(nil, 0); empty.Rate() != 0 {
		t.Errorf("Rate() without rounds = %v", empty.Rate())
	}
}

func TestNewMongoStoreBadURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), "redis://localhost", "repertoire"); err == nil {
		t.Error("NewMongoStore should reject a non-mongodb URI")
	}
}

func ids(recs []Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}
