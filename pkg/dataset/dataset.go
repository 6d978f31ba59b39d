package dataset

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/matzehuels/repertoire/pkg/errors"
)

// Line is one recorded opening line.
type Line struct {
	Source string   // File the line was read from
	Number int      // 1-based text line, or game number for PGN files
	Moves  []string // Move tokens with move numbers removed
}

// String returns "source:number", the location of the line.
func (l Line) String() string {
	if l.Source == "" {
		return fmt.Sprintf("line %d", l.Number)
	}
	return fmt.Sprintf("%s:%d", l.Source, l.Number)
}

// ParseError describes a line that could not be tokenized.
type ParseError struct {
	File   string
	Line   int
	Token  string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s:", e.File)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "%d:", e.Line)
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	if e.Token != "" {
		fmt.Fprintf(&b, "token %q: ", e.Token)
	}
	b.WriteString(e.Reason)
	return b.String()
}

// Code returns the error code for this error type.
func (e *ParseError) Code() errors.Code { return errors.ErrCodeParse }

var (
	moveNumberRE = regexp.MustCompile(`^\d+\.+`)
	nagRE        = regexp.MustCompile(`^\$\d+$`)
	moveRE       = regexp.MustCompile(`^(?:[NBRQK]?[a-h]?[1-8]?x?[a-h][1-8](?:=?[NBRQ])?|O-O(?:-O)?|0-0(?:-0)?|[a-h][1-8][a-h][1-8][nbrq]?)(?:e\.p\.)?[+#!?]*$`)
)

var results = map[string]bool{"1-0": true, "0-1": true, "1/2-1/2": true, "*": true}

// ParseLine tokenizes a single opening line. It returns nil moves for lines
// that carry no moves (blank, comment or tag lines). Errors are *ParseError
// values without file and line information.
func ParseLine(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" || text[0] == '#' || text[0] == '[' {
		return nil, nil
	}
	text, err := stripComments(text)
	if err != nil {
		return nil, err
	}

	var moves []string
	for _, tok := range strings.Fields(text) {
		if strings.ContainsAny(tok, "()") {
			return nil, &ParseError{Token: tok, Reason: "variations are not supported"}
		}
		if results[tok] {
			break
		}
		if nagRE.MatchString(tok) {
			continue
		}
		move := moveNumberRE.ReplaceAllString(tok, "")
		if move == "" {
			continue
		}
		if !moveRE.MatchString(move) {
			return nil, &ParseError{Token: tok, Reason: "malformed move"}
		}
		moves = append(moves, move)
	}
	return moves, nil
}

// stripComments removes {brace} comments and everything after a semicolon.
func stripComments(text string) (string, error) {
	if i := strings.IndexByte(text, ';'); i >= 0 {
		text = text[:i]
	}
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '{':
			depth++
		case r == '}':
			if depth == 0 {
				return "", &ParseError{Token: "}", Reason: "unbalanced comment"}
			}
			depth--
			b.WriteByte(' ')
		case depth == 0:
			b.WriteRune(r)
		}
	}
	if depth != 0 {
		return "", &ParseError{Token: "{", Reason: "unterminated comment"}
	}
	return b.String(), nil
}

// Read parses a line file. Malformed lines are returned as parse errors and
// do not stop reading; the returned error is reserved for I/O failures.
func Read(r io.Reader, name string) ([]Line, []*ParseError, error) {
	var (
		lines []Line
		errs  []*ParseError
	)
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		moves, err := ParseLine(scanner.Text())
		if err != nil {
			pe := err.(*ParseError)
			pe.File, pe.Line = name, n
			errs = append(errs, pe)
			continue
		}
		if len(moves) == 0 {
			continue
		}
		lines = append(lines, Line{Source: name, Number: n, Moves: moves})
	}
	if err := scanner.Err(); err != nil {
		return lines, errs, fmt.Errorf("read %s: %w", name, err)
	}
	return lines, errs, nil
}
