package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Start is the top node of the diagram. Nil means the root.
	Start *graph.Node

	// MaxDepth limits the diagram to nodes at most this many plies below
	// Start. Zero or less draws everything reachable.
	MaxDepth int

	// Detailed adds leaf and reachable counts to node labels.
	Detailed bool
}

// ToDOT converts the part of g selected by opts to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF] or [RenderPNG].
func ToDOT(g *graph.Graph, opts Options) string {
	start := opts.Start
	if start == nil {
		start = g.Root()
	}
	nodes := collect(start, opts.MaxDepth)
	conflicts := make(map[*graph.Node]bool)
	for _, c := range g.Conflicts() {
		conflicts[c.Node] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=14];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		label := fmtLabel(g, n, n == g.Root(), opts.Detailed)
		attrs := fmtAttrs(n, label, g.IsOwn(n), conflicts[n])
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(n), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	included := make(map[*graph.Node]bool, len(nodes))
	for _, n := range nodes {
		included[n] = true
	}
	for _, n := range nodes {
		for _, e := range n.Edges() {
			if !included[e.To] {
				continue
			}
			fmt.Fprintf(&buf, "  %s -> %s [label=%q];\n", nodeID(e.From), nodeID(e.To), e.Move.SAN)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// collect returns the nodes within maxDepth plies of start in BFS order.
func collect(start *graph.Node, maxDepth int) []*graph.Node {
	depth := map[*graph.Node]int{start: 0}
	out := []*graph.Node{start}
	for i := 0; i < len(out); i++ {
		n := out[i]
		if maxDepth > 0 && depth[n] >= maxDepth {
			continue
		}
		for _, e := range n.Edges() {
			if _, seen := depth[e.To]; seen {
				continue
			}
			depth[e.To] = depth[n] + 1
			out = append(out, e.To)
		}
	}
	return out
}

func nodeID(n *graph.Node) string {
	return "n" + strconv.Itoa(n.ID)
}

// fmtLabel names a node by the last move of its shortest origin.
func fmtLabel(g *graph.Graph, n *graph.Node, root, detailed bool) string {
	label := "start"
	if !root {
		origin := g.FirstOrigin(n)
		label = MoveLabel(len(origin), origin[len(origin)-1].SAN)
	}
	if !detailed {
		return label
	}
	return fmt.Sprintf("%s\nleaves: %d\npositions: %d", label, n.Leaves(), n.Reachable())
}

// MoveLabel numbers the move played at the given 1-based ply:
// "1. e4" for white, "1... e5" for black.
func MoveLabel(ply int, san string) string {
	num := (ply + 1) / 2
	if ply%2 == 1 {
		return fmt.Sprintf("%d. %s", num, san)
	}
	return fmt.Sprintf("%d... %s", num, san)
}

func fmtAttrs(n *graph.Node, label string, own, conflict bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label), fmt.Sprintf("tooltip=%q", n.Position.FEN())}
	switch {
	case conflict:
		attrs = append(attrs, "fillcolor=\"#f8d0d0\"", "color=red")
	case own:
		attrs = append(attrs, "fillcolor=\"#dce8f5\"")
	}
	if n.IsLeaf() {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// width and height match the viewBox, so browsers scale the drawing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
