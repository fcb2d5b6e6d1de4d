package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Canonical returns the token form of an expression's source text.
//
// Identifiers and numbers are kept as words, quoted literals are kept
// verbatim including their quotes, every other rune is its own token and
// tokens are joined by a single space. Two producers that format the same
// expression differently therefore hash it identically:
//
//	Canonical("a+ b.c( \"x y\" )") == "a + b . c ( \"x y\" )"
func Canonical(source string) string {
	var b strings.Builder
	b.Grow(len(source))

	emit := func(tok string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}

	for i := 0; i < len(source); {
		r, size := utf8.DecodeRuneInString(source[i:])
		switch {
		case unicode.IsSpace(r):
			i += size

		case isWord(r):
			start := i
			for i < len(source) {
				r, size = utf8.DecodeRuneInString(source[i:])
				if !isWord(r) {
					break
				}
				i += size
			}
			emit(source[start:i])

		case r == '"' || r == '\'' || r == '`':
			end := quoteEnd(source, i, r)
			emit(source[i:end])
			i = end

		default:
			emit(source[i : i+size])
			i += size
		}
	}

	return b.String()
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// quoteEnd returns the index just past the literal opened at start.
// An unterminated literal runs to the end of the source.
func quoteEnd(source string, start int, quote rune) int {
	escaped := false
	for i := start + 1; i < len(source); i++ {
		c := source[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && quote != '`':
			escaped = true
		case rune(c) == quote:
			return i + 1
		}
	}
	return len(source)
}
