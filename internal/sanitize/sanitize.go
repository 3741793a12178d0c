// Package sanitize normalizes client-supplied free text before it is
// persisted or used as a lookup key.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

// tagRegex matches a single markup tag.
var tagRegex = regexp.MustCompile(`<[^<>]*>`)

// Clean removes control characters (line-break sequences collapse to
// nothing), strips markup tags and trims surrounding whitespace.
//
// Any angle-bracket-delimited span is treated as a tag and removed,
// including prose like "a < b and b > c". Only an unpaired bracket
// survives. Erring toward removal keeps the stored text free of
// anything a browser could interpret as markup.
//
// Clean is pure and idempotent: Clean(Clean(x)) == Clean(x).
func Clean(raw string) string {
	// Control characters go first so a tag split across a line break
	// cannot survive the tag pass.
	s := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, raw)

	// Strip tags until stable so nested fragments like "<<b>i>" cannot
	// reassemble into a tag after one pass.
	for {
		stripped := tagRegex.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}

	return strings.TrimSpace(s)
}
