// Package cache provides byte caches for responses fetched from remote
// opening explorers.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, used by the CLI
//   - [RedisCache]: a shared Redis instance, used when several processes
//     analyze the same repertoire
//   - [NullCache]: never stores anything
//
// All backends implement [Cache]. A miss is reported through the boolean
// result of Get, never through an error; errors mean the backend itself
// failed.
//
// # Keys
//
// A [Keyer] turns request parameters into cache keys. [DefaultKeyer] is
// enough for the CLI; wrap it in a [ScopedKeyer] to give each explorer
// database or user its own namespace.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// DefaultDir returns the directory used by the file cache when none is
// configured: $XDG_CACHE_HOME/repertoire, falling back to ~/.cache/repertoire.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "repertoire"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "repertoire"), nil
}
