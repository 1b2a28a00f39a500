package analyzer

import (
	"strings"
	"unicode"
)

const (
	LangEnglish = "en"
	LangSpanish = "es"
)

// DetectLanguage is a word-list heuristic, not a language model: text is
// Spanish when at least two tokens, or more than 10% of them, are common
// Spanish words. Short or mixed-language text is often misclassified.
func (l *Lexicon) DetectLanguage(text string) string {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return LangEnglish
	}

	hits := 0
	for _, tok := range tokens {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if l.IsSpanish(tok) {
			hits++
		}
	}

	if hits >= 2 || float64(hits) > 0.1*float64(len(tokens)) {
		return LangSpanish
	}
	return LangEnglish
}
