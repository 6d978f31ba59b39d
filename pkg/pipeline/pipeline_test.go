package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/repertoire/pkg/cache"
	"github.com/matzehuels/repertoire/pkg/errors"
	rio "github.com/matzehuels/repertoire/pkg/io"
	"github.com/matzehuels/repertoire/pkg/rules"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"SVG, dot,svg", []string{"svg", "dot"}},
		{"png,,pdf", []string{"png", "pdf"}},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildOptionsValidate(t *testing.T) {
	if err := (BuildOptions{Datasets: []string{"x"}}).Validate(); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("missing color: %v", err)
	}
	if err := (BuildOptions{Color: rules.Black}).Validate(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing datasets: %v", err)
	}
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "white.txt", "1. e4 e5 2. Nf3\n1. e4 c5 2. Nf3\n1. e4 {bad\n")

	res, err := newTestRunner(nil).Build(context.Background(), BuildOptions{
		Color:    rules.White,
		Datasets: []string{path},
	})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if res.Graph.NodeCount() != 6 {
		t.Errorf("NodeCount() = %d, want 6", res.Graph.NodeCount())
	}
	if res.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", res.ParseErrors)
	}
	if !slices.Equal(res.Files, []string{path}) {
		t.Errorf("Files = %v", res.Files)
	}
	if res.Report.Inserted != 2 {
		t.Errorf("Report.Inserted = %d", res.Report.Inserted)
	}
}

func TestBuildFromExport(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "white.txt", "d4 d5 c4 e6 Nc3\nd4 e6 c4 d5 Nc3\n")
	runner := newTestRunner(nil)
	ctx := context.Background()

	orig, err := runner.Build(ctx, BuildOptions{Color: rules.White, Datasets: []string{src}})
	if err != nil {
		t.Fatal(err)
	}
	exported := filepath.Join(dir, "white.json")
	if err := rio.ExportJSON(orig.Graph, exported); err != nil {
		t.Fatal(err)
	}

	rebuilt, err := runner.Build(ctx, BuildOptions{Color: rules.White, Datasets: []string{exported}})
	if err != nil {
		t.Fatalf("Build(export) error: %v", err)
	}
	if rebuilt.Graph.NodeCount() != orig.Graph.NodeCount() || rebuilt.Graph.EdgeCount() != orig.Graph.EdgeCount() {
		t.Errorf("rebuilt %d/%d, want %d/%d",
			rebuilt.Graph.NodeCount(), rebuilt.Graph.EdgeCount(),
			orig.Graph.NodeCount(), orig.Graph.EdgeCount())
	}

	_, err = runner.Build(ctx, BuildOptions{Color: rules.Black, Datasets: []string{exported}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("wrong color export: %v", err)
	}
}

func TestBuildMissingDataset(t *testing.T) {
	_, err := newTestRunner(nil).Build(context.Background(), BuildOptions{
		Color:    rules.White,
		Datasets: []string{filepath.Join(t.TempDir(), "missing.txt")},
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Build() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRenderDOTAndJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "black.txt", "e4 c5 Nf3 d6\n")
	runner := newTestRunner(nil)
	res, err := runner.Build(context.Background(), BuildOptions{Color: rules.Black, Datasets: []string{path}})
	if err != nil {
		t.Fatal(err)
	}

	artifacts, err := Render(context.Background(), res.Graph, RenderOptions{Formats: []string{FormatDOT, FormatJSON}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(string(artifacts[FormatDOT]), "digraph") {
		t.Errorf("dot output = %.40q", artifacts[FormatDOT])
	}
	doc, err := rio.ReadJSON(bytes.NewReader(artifacts[FormatJSON]))
	if err != nil {
		t.Fatalf("json output: %v", err)
	}
	if doc.Color() != rules.Black || len(doc.Nodes) != 5 {
		t.Errorf("json document color=%v nodes=%d", doc.Color(), len(doc.Nodes))
	}

	if _, err := Render(context.Background(), res.Graph, RenderOptions{Formats: []string{"gif"}}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRenderCache(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "white.txt", "e4 e5 Nf3\n")
	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := newTestRunner(fc)
	ctx := context.Background()

	res, err := runner.Build(ctx, BuildOptions{Color: rules.White, Datasets: []string{path}})
	if err != nil {
		t.Fatal(err)
	}
	opts := RenderOptions{Formats: []string{FormatDOT}}

	first, hit, err := runner.RenderWithCacheInfo(ctx, res.Graph, opts)
	if err != nil || hit {
		t.Fatalf("first render hit=%v err=%v", hit, err)
	}
	second, hit, err := runner.RenderWithCacheInfo(ctx, res.Graph, opts)
	if err != nil || !hit {
		t.Fatalf("second render hit=%v err=%v", hit, err)
	}
	if !bytes.Equal(first[FormatDOT], second[FormatDOT]) {
		t.Error("cached artifact differs from rendered one")
	}

	opts.Refresh = true
	if _, hit, _ := runner.RenderWithCacheInfo(ctx, res.Graph, opts); hit {
		t.Error("Refresh should bypass the cache")
	}
	opts.Refresh = false
	opts.MaxDepth = 1
	if _, hit, _ := runner.RenderWithCacheInfo(ctx, res.Graph, opts); hit {
		t.Error("different options should not hit the cache")
	}
}

func TestGraphHashStable(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "e4 e5 Nf3\nd4 d5\n")
	b := writeFile(t, dir, "b.txt", "1. e4 e5 2. Nf3 ; same lines\n1. d4 d5\n")
	runner := newTestRunner(nil)
	ctx := context.Background()

	ga, err := runner.Build(ctx, BuildOptions{Color: rules.White, Datasets: []string{a}})
	if err != nil {
		t.Fatal(err)
	}
	gb, err := runner.Build(ctx, BuildOptions{Color: rules.White, Datasets: []string{b}})
	if err != nil {
		t.Fatal(err)
	}
	ha, _ := GraphHash(ga.Graph)
	hb, _ := GraphHash(gb.Graph)
	if ha != hb || len(ha) != 64 {
		t.Errorf("GraphHash() = %q and %q, want equal 64-char hashes", ha, hb)
	}
}
