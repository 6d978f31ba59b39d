package graph

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/observability"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// ErrFrozen is returned when a builder is used after [Builder.Graph].
var ErrFrozen = errors.New(errors.ErrCodeInvalidState, "graph is frozen")

// Option configures a [Builder].
type Option func(*Builder)

// WithEngine sets the rules engine. Defaults to [rules.Chess].
func WithEngine(e rules.Engine) Option {
	return func(b *Builder) {
		if e != nil {
			b.engine = e
		}
	}
}

// WithLogger sets the logger used for skipped lines and conflicts.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithStrict makes own positions with a second move an insertion error
// instead of a reported conflict.
func WithStrict(strict bool) Option {
	return func(b *Builder) { b.strict = strict }
}

// Builder constructs a [Graph]. It is not safe for concurrent use.
type Builder struct {
	engine rules.Engine
	logger *log.Logger
	strict bool
	color  rules.Color
	g      *Graph
}

// NewBuilder returns a builder for the repertoire of color.
func NewBuilder(color rules.Color, opts ...Option) *Builder {
	b := &Builder{
		engine: rules.Chess{},
		logger: log.Default(),
		color:  color,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.g = newGraph(color, b.engine)
	return b
}

type replayed struct {
	move rules.Move
	pos  *rules.Position
}

// Insert adds one line starting at the root. The line is replayed in full
// before the graph changes, so an illegal move returns an
// *errors.IllegalMoveError (with Ply set) and leaves the graph untouched.
// Inserting an empty line is a no-op and inserting a line twice changes
// nothing the second time.
//
// When a position repeats within the line, the repeating edge is added and the
// rest of the line is ignored.
func (b *Builder) Insert(moves []string) error {
	if b.g.frozen {
		return ErrFrozen
	}
	if len(moves) == 0 {
		return nil
	}

	steps := make([]replayed, 0, len(moves))
	pos := b.g.root.Position
	for i, m := range moves {
		next, mv, err := b.engine.Apply(pos, m)
		if err != nil {
			var ime *errors.IllegalMoveError
			if errors.As(err, &ime) {
				ime.Ply = i
			}
			return err
		}
		steps = append(steps, replayed{move: mv, pos: next})
		pos = next
	}

	if b.strict {
		if err := b.checkConflicts(steps); err != nil {
			return err
		}
	}

	cur := b.g.root
	seen := map[rules.Key]bool{cur.Key: true}
	for _, st := range steps {
		next, ok := b.g.index[st.pos.Key()]
		if !ok {
			next = b.g.addNode(st.pos)
		}
		b.g.addEdge(cur, st.move, next)
		if seen[next.Key] {
			break
		}
		seen[next.Key] = true
		cur = next
	}
	return nil
}

// checkConflicts reports the first own position where steps would add a
// second move.
func (b *Builder) checkConflicts(steps []replayed) error {
	key := b.g.root.Key
	for _, st := range steps {
		if n, ok := b.g.index[key]; ok && n.Turn() == b.color && len(n.out) > 0 {
			if _, has := n.bySAN[st.move.SAN]; !has {
				return errors.New(errors.ErrCodeConflict,
					"position %s already plays %v, line plays %s", key, n.Moves(), st.move.SAN)
			}
		}
		key = st.pos.Key()
	}
	return nil
}

// Infer adds transposition edges until a pass adds none. For every opponent
// position, each legal move that is not yet an edge but leads to an existing
// node becomes an edge. Own positions are left alone. It returns the number of
// edges added and the number of passes run.
func (b *Builder) Infer() (added, passes int) {
	if b.g.frozen {
		return 0, 0
	}
	for {
		passes++
		n := 0
		for _, node := range b.g.nodes {
			if node.Turn() == b.color {
				continue
			}
			for _, mv := range b.engine.LegalMoves(node.Position) {
				if _, ok := node.bySAN[mv.SAN]; ok {
					continue
				}
				next, _, err := b.engine.Apply(node.Position, mv.UCI)
				if err != nil {
					continue
				}
				target, ok := b.g.index[next.Key()]
				if !ok {
					continue
				}
				if b.g.addEdge(node, mv, target) {
					b.logger.Debug("inferred transposition", "from", node.Key, "move", mv.SAN)
					n++
				}
			}
		}
		added += n
		if n == 0 {
			return added, passes
		}
	}
}

// Graph freezes the builder and returns the finished graph with statistics
// computed. Later calls return the same graph.
func (b *Builder) Graph() *Graph {
	if !b.g.frozen {
		b.g.freeze()
	}
	return b.g
}

// Skipped is a dataset line that could not be inserted.
type Skipped struct {
	Line dataset.Line
	Err  error
}

// Report summarizes a [Build].
type Report struct {
	Color     rules.Color
	Lines     int // Lines offered
	Inserted  int // Lines inserted
	Skipped   []Skipped
	Inferred  int // Edges added by transposition inference
	Passes    int // Inference passes
	Conflicts []Conflict
	Nodes     int
	Edges     int
	Duration  time.Duration
}

// Build inserts every line, closes the graph over transpositions and freezes
// it. Lines with illegal moves are logged and skipped. In strict mode the
// first conflicting line aborts the build.
func Build(ctx context.Context, color rules.Color, lines []dataset.Line, opts ...Option) (g *Graph, report *Report, err error) {
	start := time.Now()
	hooks := observability.Build()
	hooks.OnBuildStart(ctx, color.String(), len(lines))
	defer func() {
		nodes, edges := 0, 0
		if g != nil {
			nodes, edges = g.NodeCount(), g.EdgeCount()
		}
		hooks.OnBuildComplete(ctx, color.String(), nodes, edges, time.Since(start), err)
	}()

	b := NewBuilder(color, opts...)
	report = &Report{Color: color, Lines: len(lines)}

	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if err := b.Insert(line.Moves); err != nil {
			if b.strict && errors.Is(err, errors.ErrCodeConflict) {
				return nil, nil, errors.Wrap(errors.ErrCodeConflict, err, "%s", line)
			}
			b.logger.Warn("skipping line", "line", line.String(), "err", err)
			hooks.OnLineSkipped(ctx, color.String(), string(errors.GetCode(err)))
			report.Skipped = append(report.Skipped, Skipped{Line: line, Err: err})
			continue
		}
		report.Inserted++
	}

	inferStart := time.Now()
	report.Inferred, report.Passes = b.Infer()
	hooks.OnInferComplete(ctx, color.String(), report.Inferred, report.Passes, time.Since(inferStart))

	g = b.Graph()
	report.Conflicts = g.Conflicts()
	for _, c := range report.Conflicts {
		b.logger.Warn("conflicting moves", "position", c.Node.Key, "moves", c.Moves)
	}
	report.Nodes, report.Edges = g.NodeCount(), g.EdgeCount()
	report.Duration = time.Since(start)

	b.logger.Debug("graph built",
		"color", color.Name(),
		"lines", report.Inserted,
		"nodes", report.Nodes,
		"edges", report.Edges,
		"inferred", report.Inferred,
	)
	return g, report, nil
}
