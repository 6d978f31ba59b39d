package graph

// freeze orders the nodes, computes per-node statistics and collects
// conflicts. The graph is immutable afterwards.
func (g *Graph) freeze() {
	g.order = g.topoOrder()
	for i, n := range g.order {
		n.order = i
	}
	g.computeDepths()
	g.computePaths()
	g.computeReach()

	g.conflicts = nil
	for _, n := range g.nodes {
		if n.Turn() == g.color && len(n.out) > 1 {
			g.conflicts = append(g.conflicts, Conflict{Node: n, Moves: n.Moves()})
		}
	}
	g.frozen = true
}

// topoOrder returns the reverse DFS postorder from the root. Edges into a
// node still on the DFS stack close a repetition cycle and are skipped.
func (g *Graph) topoOrder() []*Node {
	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(g.nodes))
	post := make([]*Node, 0, len(g.nodes))

	var dfs func(n *Node)
	dfs = func(n *Node) {
		color[n.ID] = gray
		for _, e := range n.out {
			if color[e.To.ID] == white {
				dfs(e.To)
			}
		}
		color[n.ID] = black
		post = append(post, n)
	}
	dfs(g.root)
	for _, n := range g.nodes {
		if color[n.ID] == white {
			dfs(n)
		}
	}

	order := make([]*Node, len(post))
	for i, n := range post {
		order[len(post)-1-i] = n
	}
	return order
}

// forward reports whether e respects the topological order.
func forward(e *Edge) bool { return e.From.order < e.To.order }

func (g *Graph) computeDepths() {
	for _, n := range g.nodes {
		n.depth = -1
	}
	g.root.depth = 0
	queue := []*Node{g.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, e := range n.out {
			if e.To.depth < 0 {
				e.To.depth = n.depth + 1
				queue = append(queue, e.To)
			}
		}
	}
}

func (g *Graph) computePaths() {
	for _, n := range g.nodes {
		n.paths = 0
	}
	g.root.paths = 1
	for _, n := range g.order {
		for _, e := range n.out {
			if !forward(e) {
				continue
			}
			e.To.paths = min(e.To.paths+n.paths, MaxPathCount)
		}
	}
}

// computeReach counts distinct reachable nodes and leaves for every node with
// one stamped DFS per node, which costs O(N·(N+E)). Counts cannot be summed
// over children in reverse topological order: a transposition reached through
// two children would be counted twice.
func (g *Graph) computeReach() {
	stamp := make([]int, len(g.nodes))
	stack := make([]*Node, 0, 64)
	for i, start := range g.nodes {
		gen := i + 1
		stamp[start.ID] = gen
		stack = append(stack[:0], start)
		reach, leaves := 0, 0
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			reach++
			if len(n.out) == 0 {
				leaves++
			}
			for _, e := range n.out {
				if stamp[e.To.ID] != gen {
					stamp[e.To.ID] = gen
					stack = append(stack, e.To)
				}
			}
		}
		start.reachable, start.leaves = reach, leaves
	}
}
