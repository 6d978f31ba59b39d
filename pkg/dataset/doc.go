// Package dataset reads recorded opening lines from text and PGN files.
//
// # Line Files
//
// A line file holds one opening line per text line. Tokens are separated by
// whitespace and may carry move numbers, either standalone or glued to the
// move:
//
//	1. d4 Nf6 2. c4 e6 3. Nc3 Bb4
//	1.e4 c5 2.Nf3 d6
//	d4 d5 c4 Nf6 Nf3
//
// Blank lines and lines starting with # are skipped, as are PGN tag lines
// ([Event "..."]). Results (1-0, 0-1, 1/2-1/2, *), numeric annotation glyphs
// ($1) and comments in braces or after a semicolon are dropped. Variations in
// parentheses are not supported and produce a [ParseError].
//
// Tokens are only checked for shape here. Whether a move is legal is decided
// later, when the line is replayed on a board.
//
// # PGN Files
//
// Files ending in .pgn are split into games, and the mainline of every game
// is replayed with github.com/notnil/chess and becomes one [Line]. Headers,
// comments, glyphs and side variations are ignored. A game that cannot be
// replayed, or that starts from a FEN set-up, is reported as a [ParseError]
// numbered by its position in the file; the games after it are still read.
//
// # Errors
//
// Malformed lines never abort a load. They are collected in [Set.Errors] as
// [ParseError] values carrying the file, line number and offending token so the
// caller can log and skip them.
package dataset
