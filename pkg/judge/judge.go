// Package judge asks a language model whether an answer the local matcher
// could not resolve is still an acceptable translation.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hazyhaar/lexicheck/pkg/lang"
	"github.com/hazyhaar/lexicheck/pkg/match"
)

// ErrMalformed is returned when the model answers with something that is not
// a verdict object.
var ErrMalformed = errors.New("judge: malformed verdict")

// Request carries one unresolved answer and its context.
type Request struct {
	UserAnswer     string
	CorrectAnswer  string
	TargetWord     string
	WordType       string
	Direction      match.Direction
	TargetLanguage lang.Code
	NativeLanguage lang.Code
}

// Verdict is the model's decision.
type Verdict struct {
	Accepted    bool   `json:"accepted"`
	Explanation string `json:"explanation"`
}

// Judge decides unresolved answers.
type Judge interface {
	Judge(ctx context.Context, req *Request) (*Verdict, error)
}

// diacritics lists the letters a learner may type without their marks.
var diacritics = [lang.Count]string{
	lang.ES: "á é í ó ú ü ñ ¿ ¡",
	lang.FR: "à â ç é è ê ë î ï ô ù û ü ÿ œ æ",
	lang.IT: "à è é ì ò ù",
	lang.PT: "á à â ã ç é ê í ó ô õ ú",
	lang.RO: "ă â î ș ț",
	lang.DE: "ä ö ü ß",
	lang.NL: "ë ï ij",
	lang.SV: "å ä ö",
	lang.NO: "æ ø å",
	lang.DA: "æ ø å",
	lang.PL: "ą ć ę ł ń ó ś ź ż",
	lang.CS: "á č ď é ě í ň ó ř š ť ú ů ý ž",
}

// Prompt renders the instruction sent to the model. Missing languages
// default to Polish learned from English.
func Prompt(req *Request) string {
	target, native := req.TargetLanguage, req.NativeLanguage
	if !target.Valid() {
		target = lang.PL
	}
	if !native.Valid() {
		native = lang.EN
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validate a learner's answer in a %s vocabulary game.\n\n", target.Name())
	fmt.Fprintf(&b, "CONTEXT: Learning %s, native %s\n\n", target.Name(), native.Name())
	b.WriteString("VALIDATION RULES (be generous):\n")
	if d := diacritics[target]; d != "" {
		fmt.Fprintf(&b, "1. DIACRITICS: Accept missing diacritics: %s\n", d)
	} else {
		b.WriteString("1. DIACRITICS: Standard spelling expected\n")
	}
	b.WriteString("2. SYNONYMS: Accept valid synonyms and alternatives\n")
	b.WriteString("3. TYPOS: Allow 1-2 typos for 5+ char words, 1 for 3-4 char\n")
	b.WriteString("4. CASE: Ignore capitalization\n")
	if match.HasArticles(target) {
		b.WriteString("5. ARTICLES: Accept with or without articles\n")
	} else {
		b.WriteString("5. ARTICLES: N/A\n")
	}

	b.WriteString("\n## ANSWER TO VALIDATE\n\n")
	fmt.Fprintf(&b, "Expected: %q\n", req.CorrectAnswer)
	fmt.Fprintf(&b, "User typed: %q", req.UserAnswer)
	if req.TargetWord != "" {
		fmt.Fprintf(&b, "\n%s word: %q", target.Name(), req.TargetWord)
		if req.WordType != "" {
			fmt.Fprintf(&b, " (%s)", req.WordType)
		}
	}
	switch req.Direction {
	case match.TargetToNative:
		fmt.Fprintf(&b, "\nDirection: %s → %s", target.Name(), native.Name())
	case match.NativeToTarget:
		fmt.Fprintf(&b, "\nDirection: %s → %s", native.Name(), target.Name())
	}
	b.WriteString("\n\nValidate this single answer. Reply with JSON {\"accepted\": boolean, \"explanation\": string}, ")
	fmt.Fprintf(&b, "the explanation brief and in %s.", native.Name())
	return b.String()
}

// ParseVerdict decodes the model's JSON reply. Code fences around the object
// are tolerated.
func ParseVerdict(text string) (*Verdict, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrMalformed)
	}

	var raw struct {
		Accepted    *bool  `json:"accepted"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw.Accepted == nil {
		return nil, fmt.Errorf("%w: missing accepted", ErrMalformed)
	}
	return &Verdict{Accepted: *raw.Accepted, Explanation: raw.Explanation}, nil
}
