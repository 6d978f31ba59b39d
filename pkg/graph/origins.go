package graph

import (
	"slices"

	"github.com/matzehuels/repertoire/pkg/rules"
)

// Origins returns up to limit move sequences from the root that reach n,
// shortest first. A limit of zero or less returns all of them, which can be
// many in heavily transposing graphs; [Node.PathCount] tells how many exist.
// The root has a single empty origin.
func (g *Graph) Origins(n *Node, limit int) [][]rules.Move {
	type partial struct {
		node  *Node
		moves []rules.Move // collected backwards
	}

	var out [][]rules.Move
	queue := []partial{{node: n}}
	for len(queue) > 0 && (limit <= 0 || len(out) < limit) {
		p := queue[0]
		queue = queue[1:]
		if p.node == g.root {
			moves := slices.Clone(p.moves)
			slices.Reverse(moves)
			out = append(out, moves)
			continue
		}
		for _, e := range p.node.in {
			if !forward(e) {
				continue
			}
			moves := append(slices.Clone(p.moves), e.Move)
			queue = append(queue, partial{node: e.From, moves: moves})
		}
	}
	return out
}

// FirstOrigin returns the shortest move sequence reaching n, or nil for the
// root.
func (g *Graph) FirstOrigin(n *Node) []rules.Move {
	origins := g.Origins(n, 1)
	if len(origins) == 0 {
		return nil
	}
	return origins[0]
}

// SANs returns the SAN of each move.
func SANs(moves []rules.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.SAN
	}
	return out
}

// UCIs returns the UCI form of each move.
func UCIs(moves []rules.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.UCI
	}
	return out
}
