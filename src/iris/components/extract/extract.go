// Package extract pulls delimited lookup terms out of raw message text.
package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// Delimiter is the character that encloses a lookup term in a message.
const Delimiter = '`'

// termPattern matches the shortest run of text between two backticks,
// newlines included.
var termPattern = regexp.MustCompile("(?s)`(.*?)`")

// Terms returns every delimited term in body, trimmed and title-cased,
// in order of appearance. Duplicates are preserved: two different surface
// terms may resolve to the same record, so dedupe happens at the entry
// level, not here. Malformed or absent delimiters yield an empty slice,
// never an error.
func Terms(body string) []string {
	// Some clients escape the delimiter when relaying markdown.
	body = strings.ReplaceAll(body, "\\`", "`")

	matches := termPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	terms := make([]string, 0, len(matches))
	for _, m := range matches {
		terms = append(terms, TitleCase(strings.TrimSpace(m[1])))
	}
	return terms
}

// TitleCase uppercases the first letter of every word and lowercases the
// rest, treating any non-letter as a word boundary.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
