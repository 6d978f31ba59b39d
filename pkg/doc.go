// Package pkg provides the core libraries for building and drilling chess
// opening repertoires.
//
// # Overview
//
// A repertoire is a set of opening lines written from one side's point of
// view. The libraries turn those lines into a graph of positions in which
// transpositions share a node, and then answer questions about it: which
// moves are prepared after a sequence, what the opponent might play that the
// repertoire never covers, and whether a player remembers the lines.
//
// # Architecture
//
// The typical data flow:
//
//	Dataset files (text lines, PGN, JSON exports)
//	         ↓
//	    [dataset] package (tokenize lines)
//	         ↓
//	    [graph] package (replay, merge transpositions, infer)
//	         ↓
//	    [explore] / [lookup] / [practice] / [coverage]
//	         ↓
//	    CLI, TUI, HTTP API, DOT/SVG/PNG/JSON output
//
// # Quick Start
//
// Build a repertoire and look up a position:
//
//	set, _ := dataset.Load("white.txt")
//	g, report, _ := graph.Build(ctx, rules.White, set.Lines)
//	res, _ := lookup.Resolve(g, []string{"e4", "c5", "Nf3"})
//	if res.Found {
//	    fmt.Println(res.Node.Moves())
//	}
//
// # Main Packages
//
// ## Domain
//
// [rules] - Move validation and position identity on top of notnil/chess.
// Positions are keyed by board, side to move, castling rights and an en
// passant square that can actually be taken.
//
// [dataset] - Tokenizer for opening lines and PGN files.
//
// [graph] - The opening graph: builder, transposition merge, inference of
// moves across transpositions, leaf counts and origin lines.
//
// [explore] - A cursor for browsing a graph move by move.
//
// [lookup] - Resolution of move sequences to graph nodes.
//
// [practice] - The practice round state machine.
//
// [coverage] - Opponent replies the repertoire does not answer, ranked by
// how often they are played according to the lichess opening explorer.
//
// [history] - Storage of finished practice rounds (JSON lines or MongoDB).
//
// ## Output
//
// [render/nodelink] - Graphviz DOT generation for opening graphs.
//
// [render] - DOT to SVG, PNG and PDF conversion.
//
// [io] - JSON export and import of graphs.
//
// ## Infrastructure
//
// [pipeline] - Load, build and render with artifact caching, shared by the
// CLI and the HTTP server.
//
// [cache] - File, Redis and null cache backends and cache key derivation.
//
// [integrations] - Rate-limited, cached HTTP client and the lichess explorer
// client.
//
// [server] - HTTP API over built repertoires.
//
// [observability] - Metric hooks with a Prometheus implementation.
//
// [config] - TOML configuration with environment overrides.
//
// [errors] - Coded errors shared by every package.
//
// [rules]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/rules
// [dataset]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/dataset
// [graph]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/graph
// [explore]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/explore
// [lookup]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/lookup
// [practice]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/practice
// [coverage]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/coverage
// [history]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/history
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/render/nodelink
// [render]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/integrations
// [server]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/observability
// [config]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/repertoire/pkg/errors
package pkg
