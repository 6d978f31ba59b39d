// Package render provides visualization output for opening graphs.
//
// # Overview
//
// The [nodelink] subpackage draws the graph as a node-link diagram through
// Graphviz. This package converts the resulting SVG to other formats:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{MaxDepth: 6})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [ToPDF] and [ToPNG] use the external rsvg-convert tool (from librsvg).
//
// [nodelink]: github.com/matzehuels/repertoire/pkg/render/nodelink
package render
