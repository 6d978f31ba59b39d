package graph

import (
	"slices"

	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// Node is one distinct position of the repertoire.
//
// Nodes are owned by their [Graph]. The exported fields must not be modified.
type Node struct {
	ID       int             // Creation index, 0 for the root
	Key      rules.Key       // Canonical position identity
	Position *rules.Position // Board state

	out   []*Edge
	bySAN map[string]*Edge
	in    []*Edge

	leaves    int
	reachable int
	depth     int
	paths     int
	order     int
}

// Edge is a move between two nodes.
type Edge struct {
	Move rules.Move
	From *Node
	To   *Node
}

// Turn returns the side to move at the node.
func (n *Node) Turn() rules.Color { return n.Position.Turn() }

// Edges returns the outgoing edges in insertion order.
func (n *Node) Edges() []*Edge { return slices.Clone(n.out) }

// Parents returns the incoming edges in insertion order.
func (n *Node) Parents() []*Edge { return slices.Clone(n.in) }

// Edge returns the outgoing edge labeled with the canonical SAN.
func (n *Node) Edge(san string) (*Edge, bool) {
	e, ok := n.bySAN[san]
	return e, ok
}

// Moves returns the SAN labels of the outgoing edges in insertion order.
func (n *Node) Moves() []string {
	moves := make([]string, len(n.out))
	for i, e := range n.out {
		moves[i] = e.Move.SAN
	}
	return moves
}

// OutDegree returns the number of outgoing edges.
func (n *Node) OutDegree() int { return len(n.out) }

// InDegree returns the number of incoming edges.
func (n *Node) InDegree() int { return len(n.in) }

// IsLeaf reports whether the node has no outgoing edges.
func (n *Node) IsLeaf() bool { return len(n.out) == 0 }

// Leaves returns the number of distinct leaf nodes reachable from n,
// counting n itself when it is a leaf.
func (n *Node) Leaves() int { return n.leaves }

// Reachable returns the number of distinct nodes reachable from n, n included.
func (n *Node) Reachable() int { return n.reachable }

// Depth returns the length of the shortest move sequence from the root.
func (n *Node) Depth() int { return n.depth }

// PathCount returns the number of distinct move sequences from the root that
// reach n, saturating at [MaxPathCount].
func (n *Node) PathCount() int { return n.paths }

// MaxPathCount caps [Node.PathCount].
const MaxPathCount = 1 << 30

// Graph is the opening graph of one repertoire color.
//
// The zero value is not usable. Graphs are produced by a [Builder] and are
// immutable once returned by [Builder.Graph].
type Graph struct {
	color     rules.Color
	engine    rules.Engine
	root      *Node
	nodes     []*Node
	index     map[rules.Key]*Node
	edges     int
	order     []*Node
	conflicts []Conflict
	frozen    bool
}

func newGraph(color rules.Color, engine rules.Engine) *Graph {
	g := &Graph{
		color:  color,
		engine: engine,
		index:  make(map[rules.Key]*Node),
	}
	g.root = g.addNode(engine.Start())
	return g
}

func (g *Graph) addNode(pos *rules.Position) *Node {
	n := &Node{
		ID:       len(g.nodes),
		Key:      pos.Key(),
		Position: pos,
		bySAN:    make(map[string]*Edge),
	}
	g.nodes = append(g.nodes, n)
	g.index[n.Key] = n
	return n
}

// addEdge links from and to with mv unless the edge already exists.
// It reports whether an edge was created.
func (g *Graph) addEdge(from *Node, mv rules.Move, to *Node) bool {
	if _, ok := from.bySAN[mv.SAN]; ok {
		return false
	}
	e := &Edge{Move: mv, From: from, To: to}
	from.out = append(from.out, e)
	from.bySAN[mv.SAN] = e
	to.in = append(to.in, e)
	g.edges++
	return true
}

// Color returns the repertoire color the graph was built for.
func (g *Graph) Color() rules.Color { return g.color }

// Engine returns the rules engine positions were computed with.
func (g *Graph) Engine() rules.Engine { return g.engine }

// Root returns the node of the starting position.
func (g *Graph) Root() *Node { return g.root }

// Node returns the node for key.
func (g *Graph) Node(key rules.Key) (*Node, bool) {
	n, ok := g.index[key]
	return n, ok
}

// Lookup returns the node for pos, or nil when the position is not part of
// the graph.
func (g *Graph) Lookup(pos *rules.Position) *Node {
	if pos == nil {
		return nil
	}
	return g.index[pos.Key()]
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Children maps each move of n to the node it leads to.
func (g *Graph) Children(n *Node) map[string]*Node {
	out := make(map[string]*Node, len(n.out))
	for _, e := range n.out {
		out[e.Move.SAN] = e.To
	}
	return out
}

// Edges returns the outgoing edges of n in insertion order.
func (g *Graph) Edges(n *Node) []*Edge { return n.Edges() }

// IsLeaf reports whether n has no outgoing edges.
func (g *Graph) IsLeaf(n *Node) bool { return n.IsLeaf() }

// SubtreeSize returns the number of distinct leaf nodes reachable from n.
func (g *Graph) SubtreeSize(n *Node) int { return n.leaves }

// Reachable returns the number of distinct nodes reachable from n.
func (g *Graph) Reachable(n *Node) int { return n.reachable }

// IsOwn reports whether the repertoire color is to move at n.
func (g *Graph) IsOwn(n *Node) bool { return n.Turn() == g.color }

// Conflicts returns own positions that carry more than one move.
func (g *Graph) Conflicts() []Conflict { return slices.Clone(g.conflicts) }

// Walk visits every node in topological order starting at the root until fn
// returns false. Edges that close a repetition cycle are ignored for ordering.
func (g *Graph) Walk(fn func(n *Node) bool) {
	for _, n := range g.order {
		if !fn(n) {
			return
		}
	}
}

// Step is the result of playing move text at a node.
type Step struct {
	Move     rules.Move      // Canonical move
	Position *rules.Position // Resulting position
	Edge     *Edge           // Matching edge, nil when the move is unexplored
}

// Play resolves move text at n. A legal move without a matching edge is not an
// error; Step.Edge is nil. Illegal text returns *errors.IllegalMoveError.
func (g *Graph) Play(n *Node, move string) (Step, error) {
	pos, mv, err := g.engine.Apply(n.Position, move)
	if err != nil {
		return Step{}, err
	}
	st := Step{Move: mv, Position: pos}
	if e, ok := n.bySAN[mv.SAN]; ok {
		st.Edge = e
	}
	return st, nil
}

// Conflict is an own position with more than one prepared move.
type Conflict struct {
	Node  *Node
	Moves []string
}

// Err returns the conflict as a coded error.
func (c Conflict) Err() error {
	return errors.New(errors.ErrCodeConflict, "position %s has %d moves: %v", c.Node.Key, len(c.Moves), c.Moves)
}
