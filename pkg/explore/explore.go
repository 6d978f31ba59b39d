// Package explore provides a cursor for browsing an opening graph.
//
// An [Explorer] starts at the root of a graph and moves along its edges. It
// never modifies the graph, so any number of explorers may share one.
//
//	ex := explore.New(g)
//	for _, c := range ex.AvailableMoves() {
//	    fmt.Println(c.Move.SAN, c.SubtreeSize)
//	}
//	if _, err := ex.Advance("d4"); err != nil {
//	    // *errors.IllegalMoveError
//	}
package explore

import (
	"cmp"
	"slices"

	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// Choice is an explored move from the current position.
type Choice struct {
	Move        rules.Move
	Node        *graph.Node // Position after the move
	SubtreeSize int         // Distinct leaf lines beyond the move
}

// Explorer is a cursor over a graph. It is not safe for concurrent use.
type Explorer struct {
	g       *graph.Graph
	cur     *graph.Node
	history []*graph.Edge
}

// New returns an explorer positioned at the root of g.
func New(g *graph.Graph) *Explorer {
	return &Explorer{g: g, cur: g.Root()}
}

// Graph returns the graph being explored.
func (e *Explorer) Graph() *graph.Graph { return e.g }

// Current returns the node under the cursor.
func (e *Explorer) Current() *graph.Node { return e.cur }

// Path returns the moves played from the root to the cursor.
func (e *Explorer) Path() []rules.Move {
	path := make([]rules.Move, len(e.history))
	for i, edge := range e.history {
		path[i] = edge.Move
	}
	return path
}

// AvailableMoves lists the explored moves at the cursor, largest subtree
// first and by SAN among equals.
func (e *Explorer) AvailableMoves() []Choice {
	edges := e.cur.Edges()
	choices := make([]Choice, len(edges))
	for i, edge := range edges {
		choices[i] = Choice{Move: edge.Move, Node: edge.To, SubtreeSize: e.g.SubtreeSize(edge.To)}
	}
	slices.SortFunc(choices, func(a, b Choice) int {
		if c := cmp.Compare(b.SubtreeSize, a.SubtreeSize); c != 0 {
			return c
		}
		return cmp.Compare(a.Move.SAN, b.Move.SAN)
	})
	return choices
}

// Advance moves the cursor along the edge for move. A move that is not among
// [Explorer.AvailableMoves] returns an *errors.IllegalMoveError and leaves the
// cursor in place; Unexplored is set when the move is legal on the board.
func (e *Explorer) Advance(move string) (*graph.Node, error) {
	st, err := e.g.Play(e.cur, move)
	if err != nil {
		return nil, err
	}
	if st.Edge == nil {
		return nil, &errors.IllegalMoveError{
			Move:       st.Move.SAN,
			FEN:        e.cur.Position.FEN(),
			Ply:        -1,
			Unexplored: true,
		}
	}
	e.history = append(e.history, st.Edge)
	e.cur = st.Edge.To
	return e.cur, nil
}

// Back undoes the last advance. It reports false at the root.
func (e *Explorer) Back() bool {
	if len(e.history) == 0 {
		return false
	}
	last := e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.cur = last.From
	return true
}

// Reset returns the cursor to the root.
func (e *Explorer) Reset() {
	e.cur = e.g.Root()
	e.history = e.history[:0]
}

// Goto replaces the cursor with the position reached by moves from the root.
// On error the cursor is unchanged.
func (e *Explorer) Goto(moves []string) error {
	next := &Explorer{g: e.g, cur: e.g.Root()}
	for i, m := range moves {
		if _, err := next.Advance(m); err != nil {
			var ime *errors.IllegalMoveError
			if errors.As(err, &ime) {
				ime.Ply = i
			}
			return err
		}
	}
	e.cur, e.history = next.cur, next.history
	return nil
}
