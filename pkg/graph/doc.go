// Package graph builds and queries opening position graphs.
//
// # Overview
//
// An opening repertoire is recorded as many linear move sequences, but the
// sequences share most of their structure and often reach the same position
// through different move orders. This package consolidates the sequences into
// a graph with exactly one [Node] per distinct position (identified by
// [rules.Key]) and one [Edge] per move between two positions.
//
// Every graph belongs to one repertoire color. Positions where that color is to
// move are own positions and normally carry a single prepared move; positions
// where the opponent moves may branch into any number of replies.
//
// # Building
//
// A [Builder] starts at the standard starting position and inserts lines one
// at a time with [Builder.Insert]. Each move is replayed on a board; the
// resulting position reuses an existing node when one exists (a transposition)
// and creates a node otherwise. A line is replayed completely before anything
// is committed, so an illegal move leaves the graph untouched.
//
// After all lines are in, [Builder.Infer] closes the graph over transpositions:
// for every opponent position it adds each legal move whose resulting position
// is already a node. With the lines
//
//	d4 Nf6 c4
//	d4 d5 c4 Nf6 Nf3
//
// the closure adds d5 after 1. d4 Nf6 2. c4, because it transposes into the
// second line, and the graph now knows that 3. Nf3 is the prepared answer.
// Passes repeat until one adds nothing.
//
// [Builder.Graph] freezes the result and computes statistics once. [Build]
// wraps the whole sequence for a loaded dataset and returns a [Report].
//
//	g, report, err := graph.Build(ctx, rules.White, set.Lines, graph.WithLogger(logger))
//
// # Querying
//
// A frozen [Graph] is immutable and safe for concurrent reads:
//
//   - [Graph.Root], [Graph.Node], [Graph.Lookup]: find nodes
//   - [Graph.Children], [Graph.Edges], [Graph.IsLeaf]: local structure
//   - [Graph.SubtreeSize], [Graph.Reachable]: cached statistics
//   - [Graph.Walk]: topological traversal from the root
//   - [Graph.Origins]: move sequences from the root to a node, shortest first
//   - [Graph.Play]: resolve move text against a node's edges
//
// # Cycles
//
// Repeating a position inside a line adds the repeating edge and stops the
// line there, so cycles can only come from repetitions. Statistics and
// traversal ignore such back edges and treat the graph as acyclic.
package graph
