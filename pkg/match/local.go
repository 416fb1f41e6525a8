package match

import "github.com/hazyhaar/lexicheck/pkg/lang"

// Direction is the translation direction of the prompt.
type Direction uint8

const (
	DirectionUnset Direction = iota
	TargetToNative
	NativeToTarget
)

// ParseDirection maps the wire form ("target_to_native", "native_to_target").
// Anything else is DirectionUnset.
func ParseDirection(s string) Direction {
	switch s {
	case "target_to_native":
		return TargetToNative
	case "native_to_target":
		return NativeToTarget
	default:
		return DirectionUnset
	}
}

func (d Direction) String() string {
	switch d {
	case TargetToNative:
		return "target_to_native"
	case NativeToTarget:
		return "native_to_target"
	default:
		return ""
	}
}

// Options carries the per-call context. The zero value is valid: no
// language-specific stripping is tried.
type Options struct {
	Direction      Direction
	TargetLanguage lang.Code
	NativeLanguage lang.Code
}

// languages returns the codes to try stripping for, target first, deduplicated.
func (o Options) languages() []lang.Code {
	out := make([]lang.Code, 0, 2)
	if o.TargetLanguage.Valid() {
		out = append(out, o.TargetLanguage)
	}
	if o.NativeLanguage.Valid() && o.NativeLanguage != o.TargetLanguage {
		out = append(out, o.NativeLanguage)
	}
	return out
}

// Verdict is the outcome of a local match. There is no Rejected: the local
// matcher only ever affirms.
type Verdict uint8

const (
	Unresolved Verdict = iota
	Accepted
)

func (v Verdict) String() string {
	if v == Accepted {
		return "accepted"
	}
	return "unresolved"
}

// Stage names the step of the ladder that produced a verdict.
type Stage string

const (
	StageNone              Stage = "none"
	StageNormalized        Stage = "normalized"
	StageArticle           Stage = "article"
	StageVerbPrefix        Stage = "verb_prefix"
	StageArticleVerbPrefix Stage = "article_verb_prefix"
	StageAlternative       Stage = "alternative"
	StageTypo              Stage = "typo"
	StageTypoStripped      Stage = "typo_stripped"
	StageTypoAlternative   Stage = "typo_alternative"
)

// Local runs the local ladder and returns Accepted or Unresolved.
func Local(userAnswer, correctAnswer string, opts Options) Verdict {
	v, _ := Explain(userAnswer, correctAnswer, opts)
	return v
}

// Explain is Local plus the stage that decided. The stages run from most to
// least strict; reordering them changes what gets accepted (typo tolerance
// before article stripping would let "cta" match "a cat").
func Explain(userAnswer, correctAnswer string, opts Options) (Verdict, Stage) {
	user := Normalize(userAnswer)
	correct := Normalize(correctAnswer)

	if user == correct {
		return Accepted, StageNormalized
	}
	if user == "" || correct == "" {
		return Unresolved, StageNone
	}

	langs := opts.languages()

	for _, code := range langs {
		if StripArticle(user, code) == StripArticle(correct, code) {
			return Accepted, StageArticle
		}
	}
	for _, code := range langs {
		if StripVerbPrefix(user, code) == StripVerbPrefix(correct, code) {
			return Accepted, StageVerbPrefix
		}
	}
	for _, code := range langs {
		if StripBoth(user, code) == StripBoth(correct, code) {
			return Accepted, StageArticleVerbPrefix
		}
	}

	// Only the expected answer is split. Splitting the user's answer would
	// accept "cat / dog / house" for anything in the list.
	alts := SplitAlternatives(correct)
	multi := len(alts) > 1
	if multi {
		for _, alt := range alts {
			if user == alt {
				return Accepted, StageAlternative
			}
			for _, code := range langs {
				if StripBoth(user, code) == StripBoth(alt, code) {
					return Accepted, StageAlternative
				}
			}
		}
	}

	if TypoMatch(user, correct) {
		return Accepted, StageTypo
	}
	for _, code := range langs {
		u, c := StripBoth(user, code), StripBoth(correct, code)
		if u != "" && c != "" && TypoMatch(u, c) {
			return Accepted, StageTypoStripped
		}
	}
	if multi {
		for _, alt := range alts {
			if TypoMatch(user, alt) {
				return Accepted, StageTypoAlternative
			}
		}
	}

	return Unresolved, StageNone
}
