package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repertoire/pkg/cache"
	"github.com/matzehuels/repertoire/pkg/dataset"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/graph"
	"github.com/matzehuels/repertoire/pkg/io"
	"github.com/matzehuels/repertoire/pkg/render/nodelink"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration // Artifact lifetime in the cache
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultArtifactTTL,
	}
}

// Load reads the datasets of opts into lines. Files ending in .json are
// graph exports and must belong to opts.Color; everything else goes through
// [dataset.Load]. Unparseable lines are logged and skipped.
func (r *Runner) Load(ctx context.Context, opts BuildOptions) ([]dataset.Line, []string, int, error) {
	if err := opts.Validate(); err != nil {
		return nil, nil, 0, err
	}

	var (
		lines     []dataset.Line
		files     []string
		parseErrs int
	)
	for _, p := range opts.Datasets {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}
		if strings.EqualFold(filepath.Ext(p), ".json") {
			doc, err := io.ImportJSON(p)
			if err != nil {
				return nil, nil, 0, err
			}
			if doc.Color() != opts.Color {
				return nil, nil, 0, errors.New(errors.ErrCodeInvalidInput,
					"%s is a %s graph, expected %s", p, doc.Color().Name(), opts.Color.Name())
			}
			lines = append(lines, doc.Lines(p)...)
			files = append(files, p)
			continue
		}

		set, err := dataset.Load(p)
		if err != nil {
			return nil, nil, 0, err
		}
		for _, pe := range set.Errors {
			r.Logger.Warn("skipping unparseable line", "err", pe)
		}
		lines = append(lines, set.Lines...)
		files = append(files, set.Files...)
		parseErrs += len(set.Errors)
	}
	return lines, files, parseErrs, nil
}

// Build loads the datasets of opts and builds the graph.
func (r *Runner) Build(ctx context.Context, opts BuildOptions) (*Result, error) {
	loadStart := time.Now()
	lines, files, parseErrs, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result := &Result{Files: files, ParseErrors: parseErrs}
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Debug("loaded datasets",
		"color", opts.Color.Name(),
		"files", len(files),
		"lines", len(lines),
		"duration", result.Stats.LoadTime)

	buildStart := time.Now()
	g, report, err := graph.Build(ctx, opts.Color, lines,
		graph.WithLogger(r.Logger),
		graph.WithStrict(opts.Strict),
	)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Graph, result.Report = g, report
	result.Stats.BuildTime = time.Since(buildStart)

	r.Logger.Info("built repertoire",
		"color", opts.Color.Name(),
		"positions", g.NodeCount(),
		"moves", g.EdgeCount(),
		"inferred", report.Inferred,
		"duration", result.Stats.BuildTime)

	return result, nil
}

// GraphHash returns the content hash of g's JSON export.
func GraphHash(g *graph.Graph) (string, error) {
	var buf bytes.Buffer
	if err := io.WriteJSON(g, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *graph.Graph, opts RenderOptions) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	hash, err := GraphHash(g)
	if err != nil {
		return nil, false, fmt.Errorf("hash graph: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(hash, opts.artifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, g, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(hash, opts.artifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Debug("cache write failed", "format", format, "err", err)
		}
	}
	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, opts RenderOptions) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Render generates output artifacts in the requested formats without
// caching.
func Render(ctx context.Context, g *graph.Graph, opts RenderOptions) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	dot := nodelink.ToDOT(g, nodelink.Options{
		Start:    opts.Start,
		MaxDepth: opts.MaxDepth,
		Detailed: opts.Detailed,
	})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.PNGScale)
		case FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = io.WriteJSON(g, &buf)
			data = buf.Bytes()
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
