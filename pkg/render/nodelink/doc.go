// Package nodelink renders opening graphs as node-link diagrams.
//
// # Overview
//
// Each position becomes a box labeled with the move that first reaches it
// ("3. c4", "2... e6"); each edge is an arrow labeled with its move.
// Positions where the repertoire color is to move are shaded, leaves have a
// bold outline and positions with conflicting moves are drawn in red.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{MaxDepth: 8})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Start: draw the subgraph below this node instead of the whole graph
//   - MaxDepth: stop this many plies below Start (0 = no limit)
//   - Detailed: add leaf and position counts to each label
//
// Large repertoires produce diagrams Graphviz needs a long time to lay out;
// limit the depth for anything beyond a few hundred positions.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
