// Package cli implements the repertoire command-line interface.
//
// This package provides commands for building opening repertoires from
// dataset files, browsing and drilling them in the terminal, rendering them
// as diagrams, measuring their coverage against the lichess opening explorer
// and serving them over HTTP. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - build: Build the graphs and report skipped lines and conflicts
//   - explore: Browse a repertoire interactively
//   - lookup: Resolve a move sequence against a repertoire
//   - practice: Drill a repertoire against random opponent replies
//   - render: Generate DOT, SVG, PNG, PDF or JSON output
//   - coverage: Rank unexplored opponent replies by popularity
//   - serve: Expose the repertoires over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Queried 42 positions (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// queriedMessage reports how many positions were sent to the explorer.
func queriedMessage(n int) string {
	return "Queried " + plural(n, "position")
}
