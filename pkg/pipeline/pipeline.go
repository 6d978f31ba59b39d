// Package pipeline provides the load → build → render pipeline for repertoire.
//
// The CLI and the HTTP server both turn dataset files into opening graphs and
// graphs into diagrams. Centralizing that here keeps dataset handling, build
// reporting and artifact caching identical across entry points.
//
// # Stages
//
//  1. Load: read text, PGN and exported JSON datasets into lines
//  2. Build: insert lines and close the graph over transpositions
//  3. Render: draw the graph as DOT, SVG, PDF or PNG, or export it as JSON
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Build(ctx, pipeline.BuildOptions{
//	    Color:    rules.White,
//	    Datasets: []string{"openings/white"},
//	})
//	if err != nil {
//	    return err
//	}
//	artifacts, err := runner.Render(ctx, res.Graph, pipeline.RenderOptions{
//	    Formats: []string{pipeline.FormatSVG},
//	})
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/repertoire/pkg/cache"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// DefaultArtifactTTL is how long rendered diagrams stay cached.
const DefaultArtifactTTL = 30 * 24 * time.Hour

// DefaultPNGScale is the resolution multiplier of PNG output.
const DefaultPNGScale = 2.0

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list. An empty string selects
// SVG.
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// BuildOptions configures loading and building one color's graph.
type BuildOptions struct {
	Color    rules.Color
	Datasets []string // Files and directories; .json files are graph exports
	Strict   bool     // Fail on repertoire conflicts
}

// Validate checks required fields.
func (o BuildOptions) Validate() error {
	if o.Color != rules.White && o.Color != rules.Black {
		return errors.New(errors.ErrCodeInvalidColor, "build requires a color")
	}
	if len(o.Datasets) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no %s datasets configured", o.Color.Name())
	}
	return nil
}

// RenderOptions configures diagram output.
type RenderOptions struct {
	Formats  []string
	Start    *graph.Node // Top of the diagram, nil for the root
	MaxDepth int         // Plies below Start, zero or less for all
	Detailed bool        // Add leaf and position counts to labels
	PNGScale float64
	Refresh  bool // Ignore cached artifacts
}

// ValidateAndSetDefaults checks formats and fills defaults.
func (o *RenderOptions) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	return ValidateFormats(o.Formats)
}

// artifactKeyOpts returns cache key options for one format.
func (o *RenderOptions) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:   format,
		MaxDepth: o.MaxDepth,
		Detailed: o.Detailed,
	}
	if o.Start != nil {
		opts.Start = string(o.Start.Key)
	}
	if format == FormatPNG {
		opts.Format = fmt.Sprintf("%s@%.2f", format, o.PNGScale)
	}
	return opts
}

// Result contains the outputs of a build.
type Result struct {
	Graph  *graph.Graph
	Report *graph.Report

	// Files lists the dataset files read.
	Files []string

	// ParseErrors counts dataset lines that could not be tokenized.
	ParseErrors int

	Stats Stats
}

// Stats contains pipeline timing information.
type Stats struct {
	LoadTime  time.Duration
	BuildTime time.Duration
}
