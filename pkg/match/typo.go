package match

import "unicode/utf8"

// Distance returns the Levenshtein distance between a and b, counted in runes.
// It keeps two rows sized by the shorter string.
func Distance(a, b string) int {
	ar, br := []rune(a), []rune(b)
	if len(ar) < len(br) {
		ar, br = br, ar
	}
	if len(br) == 0 {
		return len(ar)
	}

	prev := make([]int, len(br)+1)
	curr := make([]int, len(br)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ar); i++ {
		curr[0] = i
		for j := 1; j <= len(br); j++ {
			cost := 1
			if ar[i-1] == br[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(br)]
}

// TypoMatch reports whether a and b are equal within the tolerance allowed for
// their length. Up to 4 runes must match exactly (cat/bat, love/live are
// different words), 5 to 9 runes allow one edit, 10 and more allow two.
func TypoMatch(a, b string) bool {
	if a == b {
		return true
	}
	n := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if n <= 4 {
		return false
	}
	allowed := 1
	if n >= 10 {
		allowed = 2
	}
	return Distance(a, b) <= allowed
}
