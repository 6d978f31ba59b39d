package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/repertoire/pkg/buildinfo"
	"github.com/matzehuels/repertoire/pkg/cache"
	"github.com/matzehuels/repertoire/pkg/config"
	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/history"
	"github.com/matzehuels/repertoire/pkg/pipeline"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "repertoire"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Global flags
	configPath string
	color      string
	datasets   []string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Repertoire builds and drills chess opening repertoires",
		Long: `Repertoire turns lists of opening lines into a position graph that merges
transpositions, then lets you browse it, look up positions, render it,
measure its coverage against the lichess opening explorer and practice it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./"+config.FileName+")")
	root.PersistentFlags().StringVarP(&c.color, "color", "c", "", "repertoire color: white or black")
	root.PersistentFlags().StringSliceVarP(&c.datasets, "dataset", "d", nil, "dataset files or directories (overrides the config)")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.lookupCommand())
	root.AddCommand(c.practiceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.coverageCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path())
	}
	c.cfg = cfg
	return cfg, nil
}

// datasetsFor returns the dataset paths for color, preferring --dataset.
func (c *CLI) datasetsFor(cfg *config.Config, color rules.Color) []string {
	if len(c.datasets) > 0 {
		return c.datasets
	}
	return cfg.Dataset(color)
}

// colors returns the colors a command operates on: the --color flag, or
// every color with configured datasets.
func (c *CLI) colors() ([]rules.Color, error) {
	if c.color != "" {
		color, err := rules.ParseColor(c.color)
		if err != nil {
			return nil, err
		}
		return []rules.Color{color}, nil
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	var out []rules.Color
	for _, color := range []rules.Color{rules.White, rules.Black} {
		if len(c.datasetsFor(cfg, color)) > 0 {
			out = append(out, color)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"no datasets configured: pass --dataset or add a [datasets] section to %s", config.FileName)
	}
	return out, nil
}

// singleColor returns the one color a command operates on. Without --color
// it falls back to the first configured color.
func (c *CLI) singleColor() (rules.Color, error) {
	colors, err := c.colors()
	if err != nil {
		return rules.NoColor, err
	}
	if len(colors) > 1 {
		c.Logger.Debug("several repertoires configured, using the first", "color", colors[0].Name())
	}
	return colors[0], nil
}

// =============================================================================
// Backends
// =============================================================================

// newCache opens the cache backend selected in the config.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.Prefix)
	case config.BackendNone:
		return cache.NewNullCache(), nil
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			if dir, err = cache.DefaultDir(); err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, c.cacheKeyer(), c.Logger), nil
}

// cacheKeyer namespaces keys with the configured prefix. The redis backend
// applies the prefix itself, so it gets the default keyer.
func (c *CLI) cacheKeyer() cache.Keyer {
	if c.cfg == nil || c.cfg.Cache.Prefix == "" || c.cfg.Cache.Backend == config.BackendRedis {
		return nil
	}
	return cache.NewScopedKeyer(nil, c.cfg.Cache.Prefix)
}

// build loads and builds the repertoire of color.
func (c *CLI) build(ctx context.Context, runner *pipeline.Runner, color rules.Color) (*pipeline.Result, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return runner.Build(ctx, pipeline.BuildOptions{
		Color:    color,
		Datasets: c.datasetsFor(cfg, color),
		Strict:   cfg.Build.Strict,
	})
}

// newHistory opens the practice history store selected in the config.
func (c *CLI) newHistory(ctx context.Context) (history.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.History.Backend {
	case config.BackendMongo:
		return history.NewMongoStore(ctx, cfg.History.URI, cfg.History.Database)
	case config.BackendNone:
		return history.NullStore{}, nil
	default:
		return history.NewFileStore(cfg.History.Path)
	}
}
