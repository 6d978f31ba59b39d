// Package config loads repertoire.toml.
//
// A configuration names the dataset files of each repertoire color and the
// backends used around the graphs: the opening-explorer client, its response
// cache, the practice history store and the HTTP server. Every field has a
// default, so an empty or missing file is a valid configuration.
//
//	[datasets]
//	white = ["openings/white"]
//	black = ["openings/black.pgn"]
//
//	[explorer]
//	database = "lichess"
//	rate = 1.0
//
//	[cache]
//	backend = "redis"
//	ttl = "168h"
//	redis_addr = "localhost:6379"
//
// [Load] searches the locations listed in [SearchPaths] when no explicit path
// is given. Secrets may be supplied through the environment instead of the
// file: REPERTOIRE_LICHESS_TOKEN, REPERTOIRE_REDIS_ADDR and
// REPERTOIRE_MONGO_URI override their file counterparts.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/repertoire/pkg/errors"
	"github.com/matzehuels/repertoire/pkg/rules"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "repertoire.toml"

// Backend names shared by the cache and history sections.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Datasets Datasets `toml:"datasets"`
	Build    Build    `toml:"build"`
	Explorer Explorer `toml:"explorer"`
	Cache    Cache    `toml:"cache"`
	History  History  `toml:"history"`
	Server   Server   `toml:"server"`

	path string
}

// Datasets lists dataset files and directories per color.
type Datasets struct {
	White []string `toml:"white"`
	Black []string `toml:"black"`
}

// Build controls graph construction.
type Build struct {
	// Strict turns repertoire conflicts into build errors.
	Strict bool `toml:"strict"`
}

// Explorer configures the opening-explorer client used by coverage analysis.
type Explorer struct {
	Database string   `toml:"database"` // "lichess" or "masters"
	BaseURL  string   `toml:"base_url"`
	Token    string   `toml:"token"`
	Rate     float64  `toml:"rate"` // Requests per second, negative for unlimited
	Speeds   []string `toml:"speeds"`
	Ratings  []int    `toml:"ratings"`
	Origins  int      `toml:"origins"` // Origins listed per unexplored position
}

// Cache selects the explorer response cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	TTL       Duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	Prefix    string   `toml:"prefix"`
}

// History selects the practice history store.
type History struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Server configures `repertoire serve`.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("24h", "90s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Explorer: Explorer{
			Database: "lichess",
			Rate:     1,
			Origins:  5,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
			Prefix:  "repertoire:",
		},
		History: History{
			Backend:  BackendFile,
			Database: "repertoire",
		},
		Server: Server{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
		},
	}
}

// SearchPaths returns the locations [Load] tries, in order.
func SearchPaths() []string {
	paths := []string{FileName}
	if dir := configHome(); dir != "" {
		paths = append(paths, filepath.Join(dir, "repertoire", "config.toml"))
	}
	return paths
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// Load reads the configuration at path. An empty path searches
// [SearchPaths] and falls back to [Default] when none exists; an explicit path
// that does not exist is an error.
func Load(path string) (*Config, error) {
	if path == "" {
		for _, p := range SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration from TOML text on top of the defaults.
// Relative paths are kept as written.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s not found", path)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if err := checkUndecoded(md); err != nil {
		return err
	}
	c.path = path
	c.resolvePaths(filepath.Dir(path))
	return nil
}

func checkUndecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(names, ", "))
}

// resolvePaths makes file references relative to the directory of the
// configuration file.
func (c *Config) resolvePaths(base string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		if strings.HasPrefix(p, "~/") {
			if home, err := os.UserHomeDir(); err == nil {
				return filepath.Join(home, p[2:])
			}
		}
		return filepath.Join(base, p)
	}
	for i, p := range c.Datasets.White {
		c.Datasets.White[i] = resolve(p)
	}
	for i, p := range c.Datasets.Black {
		c.Datasets.Black[i] = resolve(p)
	}
	c.Cache.Dir = resolve(c.Cache.Dir)
	c.History.Path = resolve(c.History.Path)
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REPERTOIRE_LICHESS_TOKEN"); v != "" {
		c.Explorer.Token = v
	}
	if v := os.Getenv("REPERTOIRE_REDIS_ADDR"); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv("REPERTOIRE_MONGO_URI"); v != "" {
		c.History.URI = v
	}
}

// Path returns the file the configuration was read from, or "" for defaults.
func (c *Config) Path() string { return c.path }

// Dataset returns the dataset paths configured for color.
func (c *Config) Dataset(color rules.Color) []string {
	if color == rules.Black {
		return slices.Clone(c.Datasets.Black)
	}
	return slices.Clone(c.Datasets.White)
}

// Validate checks backend names and value ranges.
func (c *Config) Validate() error {
	switch c.Explorer.Database {
	case "lichess", "masters":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "explorer.database must be lichess or masters, got %q", c.Explorer.Database)
	}
	if c.Explorer.Origins < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "explorer.origins must not be negative")
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.backend = redis requires cache.redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	switch c.History.Backend {
	case BackendFile, BackendNone:
	case BackendMongo:
		if c.History.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "history.backend = mongo requires history.uri")
		}
		if c.History.Database == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "history.database must not be empty")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown history backend %q", c.History.Backend)
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	return nil
}
