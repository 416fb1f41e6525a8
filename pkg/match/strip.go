package match

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/lexicheck/pkg/lang"
)

// StripArticle removes a leading article of the given language.
func StripArticle(s string, code lang.Code) string {
	return stripPrefix(s, ruleFor(code).article)
}

// StripVerbPrefix removes a leading infinitive marker ("to ", "se ", "zu ").
func StripVerbPrefix(s string, code lang.Code) string {
	return stripPrefix(s, ruleFor(code).verbPrefix)
}

// StripBoth removes the article first, then the infinitive marker.
func StripBoth(s string, code lang.Code) string {
	return StripVerbPrefix(StripArticle(s, code), code)
}

func stripPrefix(s string, re *regexp.Regexp) string {
	if re == nil {
		return s
	}
	loc := re.FindStringIndex(s)
	if loc == nil || loc[0] != 0 {
		return s
	}
	return strings.TrimSpace(s[loc[1]:])
}
