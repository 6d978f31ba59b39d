package dataset

import (
	"strconv"
	"strings"
)

// Format renders moves played from the starting position as numbered move
// text, "1. e4 e5 2. Nf3". The result parses back with [ParseLine].
func Format(moves []string) string {
	var b strings.Builder
	for i, m := range moves {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i%2 == 0 {
			b.WriteString(strconv.Itoa(i/2 + 1))
			b.WriteString(". ")
		}
		b.WriteString(m)
	}
	return b.String()
}
