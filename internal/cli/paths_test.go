package cli

import (
	"context"
	"io"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/repertoire/pkg/cache"
	"github.com/matzehuels/repertoire/pkg/config"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/rules"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, fallback, want string
	}{
		{"", "white", "white"},
		{"out", "white", "out"},
		{"out.svg", "white", "out"},
		{"dir/out.png", "black", "dir/out"},
		{"out.txt", "white", "out.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.fallback); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.fallback, got, tt.want)
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, base, format string
		count                int
		want                 string
	}{
		{"", "white", "svg", 1, "white.svg"},
		{"tree.svg", "tree", "svg", 1, "tree.svg"},
		{"tree", "tree", "svg", 1, "tree.svg"},
		{"tree.svg", "tree", "png", 2, "tree.png"},
	}
	for _, tt := range tests {
		if got := outputPath(tt.output, tt.base, tt.format, tt.count); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q, %d) = %q, want %q",
				tt.output, tt.base, tt.format, tt.count, got, tt.want)
		}
	}
}

func TestParseMoveArgs(t *testing.T) {
	got, err := parseMoveArgs([]string{"1.", "e4", "e5", "2. Nf3"})
	if err != nil {
		t.Fatalf("parseMoveArgs() error: %v", err)
	}
	if want := []string{"e4", "e5", "Nf3"}; !slices.Equal(got, want) {
		t.Errorf("parseMoveArgs() = %v, want %v", got, want)
	}

	if got, err := parseMoveArgs(nil); err != nil || len(got) != 0 {
		t.Errorf("parseMoveArgs(nil) = %v, %v", got, err)
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		word string
		want string
	}{
		{1, "line", "1 line"},
		{2, "line", "2 lines"},
		{0, "position", "0 positions"},
		{3, "pass", "3 passes"},
		{2, "query", "2 queries"},
	}
	for _, tt := range tests {
		if got := plural(tt.n, tt.word); got != tt.want {
			t.Errorf("plural(%d, %q) = %q, want %q", tt.n, tt.word, got, tt.want)
		}
	}
}

func TestStatsLine(t *testing.T) {
	if got, want := statsLine(9, 8, 3), "9 positions · 8 moves · 3 lines"; got != want {
		t.Errorf("statsLine() = %q, want %q", got, want)
	}
	if got, want := statsLine(1, 0, 0), "1 position · 0 moves"; got != want {
		t.Errorf("statsLine() = %q, want %q", got, want)
	}
}

func TestColors(t *testing.T) {
	env := newTestEnv(t)
	c := New(io.Discard, LogInfo)
	c.configPath = env.config

	got, err := c.colors()
	if err != nil {
		t.Fatal(err)
	}
	if want := []rules.Color{rules.White, rules.Black}; !slices.Equal(got, want) {
		t.Errorf("colors() = %v, want %v", got, want)
	}

	c.color = "black"
	if got, _ := c.singleColor(); got != rules.Black {
		t.Errorf("singleColor() with --color black = %v", got)
	}

	c.color = "purple"
	if _, err := c.colors(); !errors.Is(err, errors.ErrCodeInvalidColor) {
		t.Errorf("colors() with invalid flag: %v", err)
	}
}

func TestClearCache(t *testing.T) {
	ctx := context.Background()

	fc, err := cache.NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b"} {
		if err := fc.Set(ctx, key, []byte(key), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	n, where, err := clearCache(ctx, fc)
	if err != nil || n != 2 || where == "" {
		t.Errorf("clearCache(file) = %d, %q, %v", n, where, err)
	}

	mr := miniredis.RunT(t)
	rc, err := cache.NewRedisCache(ctx, mr.Addr(), "test:")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	if err := rc.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if n, _, err := clearCache(ctx, rc); err != nil || n != 1 {
		t.Errorf("clearCache(redis) = %d, %v", n, err)
	}

	if n, where, err := clearCache(ctx, cache.NewNullCache()); n != 0 || where != "" || err != nil {
		t.Errorf("clearCache(null) = %d, %q, %v", n, where, err)
	}
}

func TestCacheKeyer(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if c.cacheKeyer() != nil {
		t.Error("cacheKeyer() before config load should be nil")
	}

	c.cfg = config.Default()
	k := c.cacheKeyer()
	if k == nil {
		t.Fatal("cacheKeyer() with a prefix should scope keys")
	}
	if got := k.HTTPKey("lichess:", "x"); got != "repertoire:http:lichess::x" {
		t.Errorf("HTTPKey() = %q", got)
	}

	c.cfg.Cache.Backend = config.BackendRedis
	if c.cacheKeyer() != nil {
		t.Error("redis applies its own prefix")
	}
}
