// Package match decides locally, without any network call, whether a learner's
// answer matches the expected one.
//
// The matcher only ever affirms. A call either returns Accepted or Unresolved;
// rejecting an answer is left to whoever holds the fallback (a remote judge
// or the caller's own strict policy).
package match

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenthetical = regexp.MustCompile(`(?s)\s*\(.*?\)\s*`)
	// Trailing sentence punctuation, possibly interleaved with spaces ("ok. ." -> "ok").
	trailingPunct = regexp.MustCompile(`[\p{Z}\s.!?,;:]+$`)
)

const ringAbove = '\u030A'

// Letters whose stroke is not a combining mark, so NFD leaves them intact.
var strokeFold = strings.NewReplacer("ł", "l")

// strippedMark reports whether r is a combining mark to drop. Ring above is
// kept so å and ů recompose into single letters.
func strippedMark(r rune) bool {
	return r >= '\u0300' && r <= '\u036F' && r != ringAbove
}

// Normalize lowercases s, removes parenthetical spans, trailing punctuation and
// redundant whitespace, then strips diacritics unless s contains Cyrillic.
//
// Known imprecision, kept on purpose: Turkish ş/ç fold to s/c, Polish ą/ę
// fold to a/e, German ß is not folded to ss, and Turkish dotted/dotless I
// lowercasing is not locale-aware.
func Normalize(s string) string {
	s = cleanup(s)
	if hasCyrillic(s) {
		// е/ё, и/й, і/ї are distinct letters, not accented variants.
		return s
	}
	// A fresh chain per call: transform.Chain keeps internal state.
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.Predicate(strippedMark)), norm.NFC), s)
	if err != nil {
		return s
	}
	stripped = strokeFold.Replace(stripped)
	if stripped == s {
		return s
	}
	// Removed marks can expose trailing punctuation.
	return cleanup(stripped)
}

func cleanup(s string) string {
	// Collapse first so Unicode spaces and line breaks look like plain spaces
	// to the patterns below.
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	s = parenthetical.ReplaceAllString(s, " ")
	s = trailingPunct.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

func hasCyrillic(s string) bool {
	for _, r := range s {
		if r >= '\u0400' && r <= '\u04FF' {
			return true
		}
	}
	return false
}
