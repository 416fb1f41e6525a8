package lang

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Code
		ok    bool
	}{
		{"en", EN, true},
		{"pl", PL, true},
		{"uk", UK, true},
		{"ro", RO, true},
		{"", None, false},
		{"EN", None, false},
		{"ja", None, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.input)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = %v, %v, want %v, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for c := EN; c < Count; c++ {
		got, ok := Parse(c.String())
		if !ok || got != c {
			t.Errorf("Parse(%q) = %v, %v, want %v", c.String(), got, ok, c)
		}
		if c.Name() == "" {
			t.Errorf("Name(%v) is empty", c)
		}
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != 18 {
		t.Fatalf("len(All()) = %d, want 18", len(all))
	}
	if all[0].Code != "en" || all[0].Name != "English" {
		t.Errorf("All()[0] = %+v, want en/English", all[0])
	}
}

func TestNoneIsInvalid(t *testing.T) {
	if None.Valid() {
		t.Error("None.Valid() = true")
	}
	if None.String() != "" {
		t.Errorf("None.String() = %q", None.String())
	}
	if Count.Valid() {
		t.Error("Count.Valid() = true")
	}
}
