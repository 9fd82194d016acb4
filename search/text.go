package search

import "strings"

// stopWords are ignored when matching query words against chunk text.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "what": true, "how": true,
}

// significantWords lowercases text, trims punctuation from each word, and
// drops stop words.
func significantWords(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.ToLower(strings.Trim(f, ".,!?;:'\"-()[]{}"))
		if w != "" && !stopWords[w] {
			out = append(out, w)
		}
	}
	return out
}

// containsAll reports whether every term appears as a word in text.
// An empty term list never matches.
func containsAll(text string, terms []string) bool {
	if len(terms) == 0 {
		return false
	}
	words := make(map[string]struct{})
	for _, w := range significantWords(text) {
		words[w] = struct{}{}
	}
	for _, t := range terms {
		if _, ok := words[t]; !ok {
			return false
		}
	}
	return true
}
