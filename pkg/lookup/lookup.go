// Package lookup resolves move sequences against an opening graph.
//
// [Resolve] answers "is this line part of my repertoire?". It replays the
// sequence on a board and follows only edges that already exist. A legal
// sequence that leaves the graph is a normal answer described by [Miss], not an
// error; only illegal moves fail.
package lookup

import (
	"slices"

	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// Miss describes the first move of a sequence without a matching edge.
type Miss struct {
	Index    int         // Zero-based position of the move in the sequence
	Move     rules.Move  // Canonical form of the move that was played
	Node     *graph.Node // Node the move was played from
	Expected []string    // Explored moves at Node, sorted
}

// Err returns the miss as an *errors.UnknownMoveError.
func (m *Miss) Err() error {
	return &errors.UnknownMoveError{Move: m.Move.SAN, Expected: m.Expected}
}

// Result is the answer of [Resolve].
type Result struct {
	// Found is set when every move matched an edge; Node is then the node
	// reached.
	Found bool
	Node  *graph.Node

	// Path holds the canonical moves of the whole sequence.
	Path []rules.Move

	// Miss is set when the sequence left the graph.
	Miss *Miss

	// Transposed is the node of the final position when the sequence left
	// the graph but still ended in a known position.
	Transposed *graph.Node
}

// Resolve replays moves from the root of g. Illegal moves anywhere in the
// sequence return an *errors.IllegalMoveError with Ply set.
func Resolve(g *graph.Graph, moves []string) (Result, error) {
	var res Result
	cur := g.Root()
	pos := cur.Position
	for i, m := range moves {
		if res.Miss == nil {
			st, err := g.Play(cur, m)
			if err != nil {
				return Result{}, withPly(err, i)
			}
			res.Path = append(res.Path, st.Move)
			pos = st.Position
			if st.Edge != nil {
				cur = st.Edge.To
				continue
			}
			expected := cur.Moves()
			slices.Sort(expected)
			res.Miss = &Miss{Index: i, Move: st.Move, Node: cur, Expected: expected}
			continue
		}

		next, mv, err := g.Engine().Apply(pos, m)
		if err != nil {
			return Result{}, withPly(err, i)
		}
		res.Path = append(res.Path, mv)
		pos = next
	}

	if res.Miss == nil {
		res.Found, res.Node = true, cur
		return res, nil
	}
	res.Transposed = g.Lookup(pos)
	return res, nil
}

func withPly(err error, ply int) error {
	var ime *errors.IllegalMoveError
	if errors.As(err, &ime) {
		ime.Ply = ply
	}
	return err
}
