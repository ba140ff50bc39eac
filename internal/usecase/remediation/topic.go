package remediation

import (
	"strings"
	"unicode"
)

// curatedTopic maps a domain keyword to a canonical search phrase.
// Checked in order; first match wins.
type curatedTopic struct {
	keyword string
	phrase  string
}

var curatedTopics = []curatedTopic{
	{"cell theory", "cell theory"},
	{"mitochondria", "mitochondria cellular respiration"},
	{"mendelian genetics", "mendelian genetics inheritance"},
	{"photosynthesis", "photosynthesis"},
	{"dna", "DNA structure function"},
	{"protein", "protein synthesis"},
	{"evolution", "evolution natural selection"},
}

var stopWords = map[string]struct{}{
	"what": {}, "which": {}, "where": {}, "when": {}, "why": {}, "how": {},
	"who": {}, "does": {}, "do": {}, "did": {}, "is": {}, "are": {}, "was": {},
	"were": {}, "the": {}, "a": {}, "an": {}, "of": {}, "in": {}, "on": {},
	"for": {}, "to": {}, "and": {}, "or": {}, "with": {}, "about": {},
	"following": {}, "statement": {}, "correct": {}, "true": {}, "false": {},
	"not": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

// ExtractTopic derives a searchable topic from a question text. Curated
// keywords take priority; otherwise the first three meaningful words are
// joined. An empty result means the question yields no usable topic and
// callers must skip it.
func ExtractTopic(questionText string) string {
	lower := strings.ToLower(questionText)

	for _, t := range curatedTopics {
		if strings.Contains(lower, t.keyword) {
			return t.phrase
		}
	}

	var kept []string
	for _, word := range strings.Fields(lower) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if word == "" {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if len(word) <= 3 || isNumeric(word) {
			continue
		}
		kept = append(kept, word)
		if len(kept) == 3 {
			break
		}
	}
	return strings.Join(kept, " ")
}

func isNumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
