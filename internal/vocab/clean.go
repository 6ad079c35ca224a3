// Package vocab provides tag normalization, alias resolution, and atomic
// decomposition for the album tag vocabulary.
package vocab

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any run of separator characters between tokens.
	separators = regexp.MustCompile(`[-_/\\.,+]+`)
	// Matches any non-alphanumeric, non-space character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9 ]+`)
	// Matches runs of whitespace.
	multiSpace = regexp.MustCompile(`\s+`)
)

// Clean converts a raw tag string to its space-separated lowercase form.
// "Black-Metal" -> "black metal".
// "Prog_Rock" -> "prog rock".
// "Jazz / Fusion" -> "jazz fusion".
func Clean(s string) string {
	// Normalize unicode (decompose accented characters).
	s = norm.NFKD.String(s)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)

	// Separators become spaces, everything else non-alphanumeric drops.
	s = separators.ReplaceAllString(s, " ")
	s = nonAlphanumeric.ReplaceAllString(s, "")

	// Collapse whitespace.
	s = multiSpace.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// CollapseKey produces a separator-insensitive lookup key: all spaces
// removed after cleaning. "black metal", "Black-Metal" and "BLACKMETAL"
// share the key "blackmetal".
func CollapseKey(s string) string {
	return strings.ReplaceAll(Clean(s), " ", "")
}
