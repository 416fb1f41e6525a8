package match

import (
	"regexp"

	"github.com/hazyhaar/lexicheck/pkg/lang"
)

// rule holds the start-anchored patterns for one language. Either may be nil.
type rule struct {
	article    *regexp.Regexp
	verbPrefix *regexp.Regexp
}

// Patterns are written against normalized text: Greek tonos and Romanian
// comma-below are already gone by the time they run.
var rules = [lang.Count]rule{
	lang.EN: {
		article:    regexp.MustCompile(`(?i)^(the|a|an)\s+`),
		verbPrefix: regexp.MustCompile(`(?i)^to\s+`),
	},
	lang.ES: {article: regexp.MustCompile(`(?i)^(el|la|los|las|un|una|unos|unas)\s+`)},
	lang.FR: {
		article:    regexp.MustCompile(`(?i)^(le|la|les|un|une|des|du|de la)\s+|^(l'|de l')`),
		verbPrefix: regexp.MustCompile(`(?i)^(se\s+|s')`),
	},
	lang.DE: {
		article:    regexp.MustCompile(`(?i)^(der|die|das|den|dem|des|ein|eine|einen|einem|eines)\s+`),
		verbPrefix: regexp.MustCompile(`(?i)^zu\s+`),
	},
	lang.IT: {article: regexp.MustCompile(`(?i)^(il|lo|la|i|gli|le|un|uno|una)\s+|^(un')`)},
	lang.PT: {article: regexp.MustCompile(`(?i)^(o|a|os|as|um|uma|uns|umas)\s+`)},
	lang.NL: {
		article:    regexp.MustCompile(`(?i)^(de|het|een)\s+`),
		verbPrefix: regexp.MustCompile(`(?i)^te\s+`),
	},
	lang.EL: {article: regexp.MustCompile(`(?i)^(ο|η|το|οι|τα|ενας|μια|ενα)\s+`)},
	lang.HU: {article: regexp.MustCompile(`(?i)^(a|az|egy)\s+`)},
	lang.SV: {article: regexp.MustCompile(`(?i)^(en|ett|den|det|de)\s+`)},
	lang.NO: {article: regexp.MustCompile(`(?i)^(en|ei|et|den|det|de)\s+`)},
	lang.DA: {article: regexp.MustCompile(`(?i)^(en|et|den|det|de)\s+`)},
	lang.RO: {article: regexp.MustCompile(`(?i)^(un|o|niste)\s+`)},
	// pl, ru, cs, uk, tr: no articles, no infinitive marker.
}

func ruleFor(code lang.Code) rule {
	if code >= lang.Count {
		return rule{}
	}
	return rules[code]
}

// HasArticles reports whether the language has an article table entry.
func HasArticles(code lang.Code) bool {
	return ruleFor(code).article != nil
}

// HasVerbPrefix reports whether the language has an infinitive marker entry.
func HasVerbPrefix(code lang.Code) bool {
	return ruleFor(code).verbPrefix != nil
}
