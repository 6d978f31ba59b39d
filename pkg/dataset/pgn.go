package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"
)

// ReadPGN extracts the mainline of every game in a PGN stream. Comments,
// variations and annotation glyphs are removed before a game's movetext is
// decoded. A game that cannot be decoded is returned as a parse error whose
// Line is the game's number in the file, and reading continues with the next
// game. The returned error is reserved for I/O failures.
func ReadPGN(r io.Reader, name string) ([]Line, []*ParseError, error) {
	var (
		lines []Line
		errs  []*ParseError
	)
	games, err := splitGames(r)
	for i, g := range games {
		n := i + 1
		moves, perr := decodeGame(g)
		if perr != nil {
			perr.File, perr.Line = name, n
			errs = append(errs, perr)
			continue
		}
		if len(moves) == 0 {
			continue
		}
		lines = append(lines, Line{Source: name, Number: n, Moves: moves})
	}
	if err != nil {
		return lines, errs, fmt.Errorf("read %s: %w", name, err)
	}
	return lines, errs, nil
}

// pgnGame is the raw text of one game.
type pgnGame struct {
	tags     []string
	movetext strings.Builder
}

// splitGames cuts a PGN stream into games. A game ends at a blank line after
// its movetext or at a tag line that follows movetext.
func splitGames(r io.Reader) ([]*pgnGame, error) {
	var (
		games   []*pgnGame
		cur     *pgnGame
		inMoves bool
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if inMoves {
				cur, inMoves = nil, false
			}
			continue
		}
		if line[0] == '%' {
			continue // escape line
		}
		isTag := line[0] == '['
		if cur == nil || (isTag && inMoves) {
			cur, inMoves = &pgnGame{}, false
			games = append(games, cur)
		}
		if isTag && !inMoves {
			cur.tags = append(cur.tags, line)
			continue
		}
		inMoves = true
		cur.movetext.WriteString(line)
		cur.movetext.WriteByte('\n')
	}
	return games, scanner.Err()
}

// decodeGame replays the mainline of g on a board and returns its moves in
// SAN.
func decodeGame(g *pgnGame) (moves []string, perr *ParseError) {
	for _, tag := range g.tags {
		if strings.HasPrefix(strings.ToLower(tag), "[fen ") {
			return nil, &ParseError{Token: tag, Reason: "games from a set-up position are not supported"}
		}
	}
	text, perr := mainline(g.movetext.String())
	if perr != nil {
		return nil, perr
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	// The chess package panics on some movetext it does not expect.
	defer func() {
		if r := recover(); r != nil {
			moves, perr = nil, &ParseError{Reason: fmt.Sprintf("malformed game: %v", r)}
		}
	}()
	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	game := chess.NewGame(opt)
	positions := game.Positions()
	notation := chess.AlgebraicNotation{}
	for i, m := range game.Moves() {
		moves = append(moves, notation.Encode(positions[i], m))
	}
	return moves, nil
}

// mainline strips brace and semicolon comments, variations in parentheses
// (nested to any depth) and $n glyphs from movetext. Castling written with
// zeros is rewritten with letters.
func mainline(movetext string) (string, *ParseError) {
	var (
		b       strings.Builder
		comment bool // inside {...}
		eol     bool // inside ;... up to the end of the line
		depth   int  // variation nesting
	)
	for _, r := range movetext {
		switch {
		case eol:
			if r == '\n' {
				eol = false
				b.WriteByte(' ')
			}
		case comment:
			if r == '}' {
				comment = false
				b.WriteByte(' ')
			}
		case r == '{':
			comment = true
		case r == ';':
			eol = true
		case r == '(':
			depth++
		case r == ')':
			if depth == 0 {
				return "", &ParseError{Token: ")", Reason: "unbalanced variation"}
			}
			depth--
			b.WriteByte(' ')
		case depth == 0:
			b.WriteRune(r)
		}
	}
	switch {
	case comment:
		return "", &ParseError{Token: "{", Reason: "unterminated comment"}
	case depth > 0:
		return "", &ParseError{Token: "(", Reason: "unterminated variation"}
	}

	fields := strings.Fields(b.String())
	kept := fields[:0]
	for _, f := range fields {
		if nagRE.MatchString(f) {
			continue
		}
		if strings.HasPrefix(f, "0-0") {
			f = strings.ReplaceAll(f, "0", "O")
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " "), nil
}
