package match

import (
	"regexp"
	"strings"
)

var slash = regexp.MustCompile(`\s*/\s*`)

// SplitAlternatives splits "dog / hound" into ["dog", "hound"].
// Commas are not separators: "yes, please" is one answer.
func SplitAlternatives(s string) []string {
	parts := slash.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
