package rules

import (
	"regexp"
	"slices"
	"strings"

	"github.com/notnil/chess"

	"github.com/matzehuels/repertoire/pkg/errors"
)

// Position is an immutable chess position produced by an [Engine].
type Position struct {
	pos *chess.Position
	key Key
}

func newPosition(p *chess.Position) *Position {
	return &Position{pos: p, key: keyOf(p)}
}

// Key returns the canonical identity of the position.
func (p *Position) Key() Key { return p.key }

// FEN returns the full FEN record, including move clocks.
func (p *Position) FEN() string { return p.pos.String() }

// Turn returns the side to move.
func (p *Position) Turn() Color {
	if p.pos.Turn() == chess.White {
		return White
	}
	return Black
}

// Board returns a text drawing of the board for terminal display.
func (p *Position) Board() string { return p.pos.Board().Draw() }

// keyOf returns the first four FEN fields, dropping the en-passant target when
// no en-passant capture is legal.
func keyOf(p *chess.Position) Key {
	f := strings.Fields(p.String())
	if len(f) < 4 {
		return Key(strings.Join(f, " "))
	}
	f = f[:4]
	if f[3] != "-" && !hasEnPassant(p) {
		f[3] = "-"
	}
	return Key(strings.Join(f, " "))
}

func hasEnPassant(p *chess.Position) bool {
	for _, m := range p.ValidMoves() {
		if m.HasTag(chess.EnPassant) {
			return true
		}
	}
	return false
}

// Parse builds a position from a FEN record. Records with only the four
// identity fields are accepted; move clocks default to "0 1".
func Parse(fen string) (*Position, error) {
	f := strings.Fields(fen)
	if len(f) == 4 {
		fen = strings.Join(f, " ") + " 0 1"
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid FEN %q", fen)
	}
	return newPosition(chess.NewGame(opt).Position()), nil
}

// Chess is the [Engine] backed by github.com/notnil/chess.
// The zero value is ready to use.
type Chess struct{}

var _ Engine = Chess{}

// Start returns the standard starting position.
func (Chess) Start() *Position {
	return newPosition(chess.StartingPosition())
}

// Apply implements [Engine].
func (Chess) Apply(pos *Position, move string) (*Position, Move, error) {
	m, err := decode(pos.pos, move)
	if err != nil {
		return nil, Move{}, err
	}
	mv := Move{
		SAN: chess.AlgebraicNotation{}.Encode(pos.pos, m),
		UCI: chess.UCINotation{}.Encode(pos.pos, m),
	}
	return newPosition(pos.pos.Update(m)), mv, nil
}

// LegalMoves implements [Engine]. Moves are ordered by SAN.
func (Chess) LegalMoves(pos *Position) []Move {
	valid := pos.pos.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, Move{
			SAN: chess.AlgebraicNotation{}.Encode(pos.pos, m),
			UCI: chess.UCINotation{}.Encode(pos.pos, m),
		})
	}
	slices.SortFunc(moves, func(a, b Move) int { return strings.Compare(a.SAN, b.SAN) })
	return moves
}

var (
	sanPattern = regexp.MustCompile(`^([NBRQK])?([a-h])?([1-8])?x?([a-h][1-8])(=?[NBRQ])?$`)
	uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][nbrq]?$`)
)

// normalizeSAN strips suffixes and rewrites zero castling.
func normalizeSAN(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "+#!?")
	s = strings.TrimSuffix(s, "e.p.")
	switch s {
	case "0-0":
		return "O-O"
	case "0-0-0":
		return "O-O-O"
	}
	return s
}

// decode resolves move text to exactly one legal move of p.
func decode(p *chess.Position, text string) (*chess.Move, error) {
	illegal := &errors.IllegalMoveError{Move: text, FEN: p.String(), Ply: -1}
	s := normalizeSAN(text)
	if s == "" {
		return nil, illegal
	}
	valid := p.ValidMoves()

	// No SAN move has the shape of a UCI move.
	if uciPattern.MatchString(s) {
		uci := chess.UCINotation{}
		for _, m := range valid {
			if uci.Encode(p, m) == s {
				return m, nil
			}
		}
		return nil, illegal
	}

	for _, m := range valid {
		if normalizeSAN(chess.AlgebraicNotation{}.Encode(p, m)) == s {
			return m, nil
		}
	}

	if m := matchLenient(p, valid, s); m != nil {
		return m, nil
	}
	return nil, illegal
}

var pieceTypes = map[string]chess.PieceType{
	"":  chess.Pawn,
	"N": chess.Knight,
	"B": chess.Bishop,
	"R": chess.Rook,
	"Q": chess.Queen,
	"K": chess.King,
}

// matchLenient accepts SAN with redundant disambiguation. It returns nil
// unless exactly one legal move matches.
func matchLenient(p *chess.Position, valid []*chess.Move, s string) *chess.Move {
	parts := sanPattern.FindStringSubmatch(s)
	if parts == nil {
		return nil
	}
	piece, file, rank, dest := parts[1], parts[2], parts[3], parts[4]
	promo := chess.NoPieceType
	if parts[5] != "" {
		promo = pieceTypes[strings.TrimPrefix(parts[5], "=")]
	}

	var found *chess.Move
	for _, m := range valid {
		if m.S2().String() != dest || m.Promo() != promo {
			continue
		}
		if p.Board().Piece(m.S1()).Type() != pieceTypes[piece] {
			continue
		}
		if file != "" && m.S1().File().String() != file {
			continue
		}
		if rank != "" && m.S1().Rank().String() != rank {
			continue
		}
		if found != nil {
			return nil
		}
		found = m
	}
	return found
}
