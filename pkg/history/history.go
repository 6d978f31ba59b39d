package history

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/repertoire/pkg/practice"
)

// Record is a stored practice round.
type Record struct {
	ID       string    `json:"id" bson:"_id"`
	Time     time.Time `json:"time" bson:"time"`
	Color    string    `json:"color" bson:"color"`
	Start    []string  `json:"start,omitempty" bson:"start,omitempty"`
	Moves    []string  `json:"moves" bson:"moves"`
	Outcome  string    `json:"outcome" bson:"outcome"`
	Guess    string    `json:"guess,omitempty" bson:"guess,omitempty"`
	Expected []string  `json:"expected,omitempty" bson:"expected,omitempty"`
}

// Succeeded reports whether the round reached the end of its line.
func (r Record) Succeeded() bool { return r.Outcome == practice.Success.String() }

// FromRound converts a finished round into a record with a fresh ID.
func FromRound(r practice.Round, now time.Time) Record {
	return Record{
		ID:       uuid.NewString(),
		Time:     now.UTC(),
		Color:    r.Color.String(),
		Start:    r.Start,
		Moves:    r.Moves,
		Outcome:  r.Outcome.String(),
		Guess:    r.Guess,
		Expected: r.Expected,
	}
}

// Store persists practice records.
type Store interface {
	// Record appends a record.
	Record(ctx context.Context, rec Record) error

	// Recent returns up to limit records for color, newest first. An empty
	// color matches both; a limit of zero or less returns all.
	Recent(ctx context.Context, color string, limit int) ([]Record, error)

	// Close releases the store.
	Close() error
}

// NullStore discards records.
type NullStore struct{}

func (NullStore) Record(context.Context, Record) error { return nil }
func (NullStore) Recent(context.Context, string, int) ([]Record, error) {
	return nil, nil
}
func (NullStore) Close() error { return nil }

// Miss counts failures on one line.
type Miss struct {
	Line     []string // Moves played up to the wrong guess
	Expected []string
	Count    int
}

// Summary aggregates practice records.
type Summary struct {
	Rounds    int
	Succeeded int
	Failed    int
	Misses    []Miss // Most frequent first
}

// Rate returns the share of successful rounds, or zero without rounds.
func (s Summary) Rate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Rounds)
}

// Summarize aggregates records. Misses lists at most top lines.
func Summarize(records []Record, top int) Summary {
	var s Summary
	misses := make(map[string]*Miss)
	for _, r := range records {
		s.Rounds++
		if r.Succeeded() {
			s.Succeeded++
			continue
		}
		s.Failed++
		line := append(slices.Clone(r.Start), r.Moves...)
		key := strings.Join(line, " ")
		m, ok := misses[key]
		if !ok {
			m = &Miss{Line: line, Expected: r.Expected}
			misses[key] = m
		}
		m.Count++
	}

	for _, m := range misses {
		s.Misses = append(s.Misses, *m)
	}
	slices.SortFunc(s.Misses, func(a, b Miss) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(strings.Join(a.Line, " "), strings.Join(b.Line, " "))
	})
	if top > 0 && len(s.Misses) > top {
		s.Misses = s.Misses[:top]
	}
	return s
}
