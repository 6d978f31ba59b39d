// Package rules adapts a chess rules engine to the needs of an opening graph.
//
// # Overview
//
// The opening graph identifies positions, not move orders. Two sequences that
// reach the same arrangement of pieces with the same side to move, castling
// rights and en-passant opportunity are the same position. This package
// computes that identity as a [Key] and hides the rules engine behind the
// [Engine] interface so the graph never has to know about board internals.
//
// # Position Identity
//
// A [Key] is the first four fields of a FEN record: piece placement, side to
// move, castling rights and en-passant target. Move clocks are dropped. The
// en-passant target is only kept when an en-passant capture is actually legal,
// so a double pawn push that no enemy pawn can take does not split an
// otherwise identical position:
//
//	1. d4 Nf6 2. c4 d5   and   1. d4 d5 2. c4 Nf6
//
// reach the same [Key] even though only the first sequence ends on a double
// push.
//
// # Move Text
//
// [Chess.Apply] accepts moves in standard algebraic notation and is lenient in
// the ways opening files usually need:
//
//   - check, mate and annotation suffixes (+ # ! ?) are ignored
//   - castling may be written with zeros (0-0, 0-0-0)
//   - over-disambiguated moves (Ngf3 when only one knight reaches f3)
//   - long algebraic UCI moves (g1f3, e7e8q)
//
// Text that does not name exactly one legal move yields an
// [errors.IllegalMoveError].
//
// Every [Move] carries the engine's canonical SAN (with check suffix), which is
// the label used for graph edges, and its UCI form, which is what external
// opening databases speak.
//
// [errors.IllegalMoveError]: github.com/matzehuels/repertoire/pkg/errors.IllegalMoveError
package rules
