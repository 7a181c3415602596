package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"git.home.luguber.info/inful/docpost/internal/textutil"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// suffixRules are tried in order; the first suffix that matches and leaves
// at least minLen bytes wins. Only sibilant plurals lose their "es"; other
// plurals drop the "s" so notes and note share a stem. search.js carries the
// same table.
var suffixRules = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"ational", "ate", 2},
	{"tional", "tion", 2},
	{"encies", "ence", 2},
	{"ances", "ance", 2},
	{"ments", "ment", 2},
	{"izing", "ize", 2},
	{"ating", "ate", 2},
	{"iness", "y", 2},
	{"ously", "ous", 2},
	{"ively", "ive", 2},
	{"ying", "y", 2},
	{"ies", "y", 2},
	{"ing", "", 3},
	{"ers", "er", 2},
	{"ed", "", 3},
	{"sses", "ss", 2},
	{"xes", "x", 2},
	{"ches", "ch", 2},
	{"shes", "sh", 2},
	{"ss", "ss", 2},
	{"s", "", 3},
}

// Tokenize folds text (case and diacritics), splits it on anything that is
// not a letter or digit, drops stop words and single characters, and stems
// what remains. The same function is applied to documents and queries.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(textutil.Fold(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if s := stem(w); s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

func stem(word string) string {
	for _, rule := range suffixRules {
		if strings.HasSuffix(word, rule.suffix) {
			stemmed := word[:len(word)-len(rule.suffix)] + rule.replacement
			if len(stemmed) >= rule.minLen {
				return stemmed
			}
		}
	}
	return word
}

// uniqueTerms tokenizes a query and drops repeated terms, keeping first
// occurrence order.
func uniqueTerms(query string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range Tokenize(query) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}
