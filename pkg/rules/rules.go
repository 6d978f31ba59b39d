package rules

import (
	"strings"

	"github.com/matzehuels/repertoire/pkg/errors"
)

// Key is the canonical identity of a position: the first four FEN fields with
// the en-passant target normalized. Equal keys denote the same position.
type Key string

// Turn returns the side to move encoded in the key.
func (k Key) Turn() Color {
	f := strings.Fields(string(k))
	if len(f) < 2 {
		return NoColor
	}
	return Color(f[1][0])
}

// Color is a side in a game: [White] or [Black].
type Color byte

const (
	NoColor Color = 0
	White   Color = 'w'
	Black   Color = 'b'
)

// String returns "w" or "b", the FEN spelling of the color.
func (c Color) String() string {
	switch c {
	case White, Black:
		return string(c)
	}
	return "-"
}

// Name returns the color spelled out for display.
func (c Color) Name() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	}
	return "none"
}

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}
	return NoColor
}

// ParseColor parses "w", "white", "b" or "black" (case-insensitive).
func ParseColor(s string) (Color, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "white":
		return White, nil
	case "b", "black":
		return Black, nil
	}
	return NoColor, errors.New(errors.ErrCodeInvalidColor, "invalid color %q (want w or b)", s)
}

// Move is a legal move from a specific position.
type Move struct {
	SAN string // Canonical standard algebraic notation, with check suffix
	UCI string // Long algebraic notation (e2e4, e7e8q)
}

// String returns the SAN of the move.
func (m Move) String() string { return m.SAN }

// Engine is the rules capability the opening graph depends on. All positions
// passed in must come from the same engine.
type Engine interface {
	// Start returns the standard starting position.
	Start() *Position

	// Apply plays move text against pos and returns the resulting position
	// and the canonical move. Illegal or ambiguous text returns an
	// *errors.IllegalMoveError and a nil position.
	Apply(pos *Position, move string) (*Position, Move, error)

	// LegalMoves lists every legal move in pos in a stable order.
	LegalMoves(pos *Position) []Move
}
