// Package integrations provides HTTP clients for remote chess APIs.
//
// # Overview
//
// Each remote service has its own subpackage:
//
//   - [lichess]: the Lichess opening explorer (masters and lichess databases)
//
// # Client Pattern
//
// Service clients embed the shared [Client] and follow the same pattern:
//
//	client := lichess.NewClient(c, 24*time.Hour, lichess.Options{Database: "masters"})
//	moves, err := client.Position(ctx, []string{"e2e4", "c7c5"}, false)  // false = use cache
//
// The shared [Client] handles:
//   - Response caching through any [cache.Cache] backend, with TTL
//   - Client-side rate limiting (golang.org/x/time/rate)
//   - Retries with backoff on network errors, 5xx and 429 responses
//   - HTTP hooks from the observability package
//
// [lichess]: github.com/matzehuels/repertoire/pkg/integrations/lichess
// [cache.Cache]: github.com/matzehuels/repertoire/pkg/cache.Cache
package integrations
