// Package lang defines the closed set of language codes the matcher knows about.
package lang

// Code identifies one of the supported languages. The zero value means
// "no language" and never has rule table entries.
type Code uint8

const (
	None Code = iota
	EN
	ES
	FR
	DE
	PL
	IT
	PT
	NL
	RU
	SV
	NO
	DA
	CS
	UK
	EL
	HU
	TR
	RO

	// Count is the size of a Code-indexed array.
	Count
)

var codes = [Count]string{
	None: "",
	EN:   "en",
	ES:   "es",
	FR:   "fr",
	DE:   "de",
	PL:   "pl",
	IT:   "it",
	PT:   "pt",
	NL:   "nl",
	RU:   "ru",
	SV:   "sv",
	NO:   "no",
	DA:   "da",
	CS:   "cs",
	UK:   "uk",
	EL:   "el",
	HU:   "hu",
	TR:   "tr",
	RO:   "ro",
}

var names = [Count]string{
	EN: "English",
	ES: "Spanish",
	FR: "French",
	DE: "German",
	PL: "Polish",
	IT: "Italian",
	PT: "Portuguese",
	NL: "Dutch",
	RU: "Russian",
	SV: "Swedish",
	NO: "Norwegian",
	DA: "Danish",
	CS: "Czech",
	UK: "Ukrainian",
	EL: "Greek",
	HU: "Hungarian",
	TR: "Turkish",
	RO: "Romanian",
}

var byString = func() map[string]Code {
	m := make(map[string]Code, Count)
	for c := EN; c < Count; c++ {
		m[codes[c]] = c
	}
	return m
}()

// Parse maps an ISO 639-1 string to a Code. Unknown strings return None, false.
func Parse(s string) (Code, bool) {
	c, ok := byString[s]
	return c, ok
}

// MustParse is Parse without the flag; unknown strings yield None.
func MustParse(s string) Code {
	c, _ := Parse(s)
	return c
}

// String returns the ISO code ("" for None).
func (c Code) String() string {
	if c >= Count {
		return ""
	}
	return codes[c]
}

// Name returns the English language name, or the code itself when unknown.
func (c Code) Name() string {
	if c == None || c >= Count {
		return c.String()
	}
	return names[c]
}

// Valid reports whether c is one of the 18 supported languages.
func (c Code) Valid() bool {
	return c > None && c < Count
}

// Info is the public description of a supported language.
type Info struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// All returns every supported language in declaration order.
func All() []Info {
	out := make([]Info, 0, Count-1)
	for c := EN; c < Count; c++ {
		out = append(out, Info{Code: codes[c], Name: names[c]})
	}
	return out
}
