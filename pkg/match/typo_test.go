package match

import (
	"testing"

	"github.com/antzucaro/matchr"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"beautiful", "beautifull", 1},
		{"żółw", "zolw", 3},
		{"гора", "горы", 1},
	}
	for _, tt := range tests {
		if got := Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
		if got := Distance(tt.b, tt.a); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

// matchr builds the full matrix; the rolling-row version must agree with it.
func TestDistance_AgreesWithFullMatrix(t *testing.T) {
	words := []string{
		"", "a", "cat", "bat", "cart", "the cat", "beautiful", "beautifull",
		"necessary", "neccessary", "rhythm", "rythm", "żółw", "zolw", "ёлка",
		"елка", "straße", "strasse", "yes, please", "yes please",
	}
	for _, a := range words {
		for _, b := range words {
			want := matchr.Levenshtein(a, b)
			if got := Distance(a, b); got != want {
				t.Errorf("Distance(%q, %q) = %d, matchr says %d", a, b, got, want)
			}
		}
	}
}

func TestTypoMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"cat", "cat", true},
		{"cat", "bat", false},
		{"love", "live", false},
		{"hand", "sand", false},
		{"house", "hause", true},
		{"house", "huose", false},
		{"necessary", "neccessary", true},
		{"beautiful", "beautifull", true},
		{"beautiful", "beatuiful", false},
		{"strawberry", "strawbery", true},
		{"strawberry", "strwbery", true},
		{"strawberry", "strwbry", false},
		{"", "", true},
	}
	for _, tt := range tests {
		if got := TypoMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("TypoMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
