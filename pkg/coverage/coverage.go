package coverage

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// MoveSource reports how often each move is played in the position reached
// by a UCI move path from the starting position. Probabilities are keyed by
// UCI and need not sum to one.
type MoveSource interface {
	MoveProbabilities(ctx context.Context, uci []string) (map[string]float64, error)
}

// MoveSourceFunc adapts a function to [MoveSource].
type MoveSourceFunc func(ctx context.Context, uci []string) (map[string]float64, error)

// MoveProbabilities calls f.
func (f MoveSourceFunc) MoveProbabilities(ctx context.Context, uci []string) (map[string]float64, error) {
	return f(ctx, uci)
}

// Entry is the estimated probability of reaching one position.
type Entry struct {
	Key         rules.Key   `json:"key"`
	FEN         string      `json:"fen"`
	Turn        rules.Color `json:"-"`
	Probability float64     `json:"probability"`
	Explored    bool        `json:"explored"`
	Origins     [][]string  `json:"origins"`
}

// Report is the result of [Analyze].
type Report struct {
	Color    rules.Color   `json:"-"`
	Entries  []Entry       `json:"entries"`
	Queries  int           `json:"queries"`
	Duration time.Duration `json:"duration"`
}

// Unexplored returns the entries outside the graph, most likely first.
func (r *Report) Unexplored() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.Explored {
			out = append(out, e)
		}
	}
	return out
}

// Covered returns the total probability of the leaves of the graph, the share
// of games that stay inside the repertoire to its end.
func (r *Report) Covered(g *graph.Graph) float64 {
	var sum float64
	for _, e := range r.Entries {
		if !e.Explored {
			continue
		}
		if n, ok := g.Node(e.Key); ok && n.IsLeaf() {
			sum += e.Probability
		}
	}
	return sum
}

// Option configures [Analyze].
type Option func(*analyzer)

// WithLogger sets the logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(a *analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithOriginLimit caps the origins recorded per entry. Defaults to 5; zero or
// less records all of them.
func WithOriginLimit(n int) Option {
	return func(a *analyzer) { a.originLimit = n }
}

// WithProgress registers a callback invoked after each opponent position
// with the number handled so far and the total.
func WithProgress(fn func(done, total int)) Option {
	return func(a *analyzer) { a.progress = fn }
}

type analyzer struct {
	g           *graph.Graph
	src         MoveSource
	logger      *log.Logger
	originLimit int
	progress    func(done, total int)

	entries map[rules.Key]*Entry
	origins map[rules.Key][][]string
	queries int
}

// Analyze propagates reach probabilities through g using src for opponent
// replies. Opponent positions nobody reaches (probability zero) are not
// queried. A source error aborts the analysis.
func Analyze(ctx context.Context, g *graph.Graph, src MoveSource, opts ...Option) (*Report, error) {
	a := &analyzer{
		g:           g,
		src:         src,
		logger:      log.Default(),
		originLimit: 5,
		entries:     make(map[rules.Key]*Entry),
		origins:     make(map[rules.Key][][]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	start := time.Now()

	total := 0
	g.Walk(func(n *graph.Node) bool {
		a.entries[n.Key] = &Entry{
			Key:      n.Key,
			FEN:      n.Position.FEN(),
			Turn:     n.Turn(),
			Explored: true,
		}
		if !g.IsOwn(n) {
			total++
		}
		return true
	})
	a.entries[g.Root().Key].Probability = 1

	var err error
	done := 0
	g.Walk(func(n *graph.Node) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		if g.IsOwn(n) {
			a.forwardOwn(n)
			return true
		}
		err = a.forwardOpponent(ctx, n)
		done++
		if a.progress != nil {
			a.progress(done, total)
		}
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	for key, e := range a.entries {
		if e.Explored {
			e.Origins = a.nodeOrigins(key)
		}
	}

	entries := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		entries = append(entries, *e)
	}
	slices.SortFunc(entries, func(x, y Entry) int {
		if c := cmp.Compare(y.Probability, x.Probability); c != 0 {
			return c
		}
		return cmp.Compare(x.Key, y.Key)
	})

	return &Report{
		Color:    g.Color(),
		Entries:  entries,
		Queries:  a.queries,
		Duration: time.Since(start),
	}, nil
}

func (a *analyzer) forwardOwn(n *graph.Node) {
	p := a.entries[n.Key].Probability
	edges := n.Edges()
	if p == 0 || len(edges) == 0 {
		return
	}
	share := p / float64(len(edges))
	for _, e := range edges {
		a.entries[e.To.Key].Probability += share
	}
}

func (a *analyzer) forwardOpponent(ctx context.Context, n *graph.Node) error {
	p := a.entries[n.Key].Probability
	if p == 0 {
		return nil
	}

	path := graph.UCIs(a.g.FirstOrigin(n))
	probs, err := a.src.MoveProbabilities(ctx, path)
	if err != nil {
		return fmt.Errorf("move statistics for %s: %w", dataset.Format(graph.SANs(a.g.FirstOrigin(n))), err)
	}
	a.queries++

	engine := a.g.Engine()
	for _, uci := range slices.Sorted(maps.Keys(probs)) {
		pos, mv, err := engine.Apply(n.Position, uci)
		if err != nil {
			a.logger.Warn("skipping move from source", "move", uci, "fen", n.Position.FEN(), "err", err)
			continue
		}
		e, ok := a.entries[pos.Key()]
		if !ok {
			e = &Entry{
				Key:  pos.Key(),
				FEN:  pos.FEN(),
				Turn: pos.Turn(),
			}
			a.entries[pos.Key()] = e
		}
		e.Probability += p * probs[uci]
		if !e.Explored {
			for _, o := range a.nodeOrigins(n.Key) {
				if a.originLimit > 0 && len(e.Origins) >= a.originLimit {
					break
				}
				e.Origins = append(e.Origins, append(slices.Clone(o), mv.SAN))
			}
		}
	}
	return nil
}

func (a *analyzer) nodeOrigins(key rules.Key) [][]string {
	if o, ok := a.origins[key]; ok {
		return o
	}
	n, _ := a.g.Node(key)
	var out [][]string
	for _, moves := range a.g.Origins(n, a.originLimit) {
		out = append(out, graph.SANs(moves))
	}
	a.origins[key] = out
	return out
}

// WriteText writes the report in a human readable listing, one numbered
// block per position.
func (r *Report) WriteText(w io.Writer) error {
	for i, e := range r.Entries {
		marker := ""
		if !e.Explored {
			marker = " (UNEXPLORED)"
		}
		if _, err := fmt.Fprintf(w, "%d:\n%s\nTo move: %s%s\nProbability: %.6f\nOrigins:\n",
			i+1, e.FEN, e.Turn.Name(), marker, e.Probability); err != nil {
			return err
		}
		for _, o := range e.Origins {
			if _, err := fmt.Fprintf(w, "  %s\n", dataset.Format(o)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
