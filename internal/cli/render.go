package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file path (or base path for multiple outputs)
	formats  string  // comma-separated output formats
	from     string  // moves leading to the drawing's start position
	depth    int     // plies drawn below the start, 0 for all
	detailed bool    // label nodes with their statistics
	scale    float64 // PNG scale factor
	noCache  bool    // skip the artifact cache
	refresh  bool    // re-render and overwrite cached artifacts
}

// renderCommand creates the render command for drawing a repertoire.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{scale: pipeline.DefaultPNGScale}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the repertoire graph",
		Long: `Render draws the repertoire as a node-link diagram through Graphviz.
Moves you prepared are drawn solid, opponent replies dashed.

Rendered artifacts are cached by graph content and options.`,
		Example: `  repertoire render -c white -f svg,png -o white
  repertoire render -c black --from "e4 c5" --depth 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := pipeline.ParseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.from, "from", "", "draw from the position after these moves")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "draw at most this many plies (0 for all)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label positions with line and position counts")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, formats []string, opts *renderOpts) error {
	color, err := c.singleColor()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	res, err := c.build(ctx, runner, color)
	if err != nil {
		return err
	}
	start, err := resolveStart(res.Graph, opts.from)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, res.Graph, pipeline.RenderOptions{
		Formats:  formats,
		Start:    start,
		MaxDepth: opts.depth,
		Detailed: opts.detailed,
		PNGScale: opts.scale,
		Refresh:  opts.refresh,
	})
	if err != nil {
		return err
	}
	prog.done("Rendered " + strings.Join(formats, ", "))

	base := basePath(opts.output, color.Name())
	printSuccess("Rendered %s repertoire", color.Name())
	printStats(res.Graph.NodeCount(), res.Graph.EdgeCount(), res.Graph.Root().Leaves())
	printCacheStatus(cached)
	for _, format := range formats {
		path := outputPath(opts.output, base, format, len(formats))
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path. Without an output it is the
// repertoire's color name; a known format extension is stripped.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file written for format. A single format honors
// an explicit output path as given.
func outputPath(output, base, format string, count int) string {
	if count == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}
