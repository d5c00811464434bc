// Package analyzer provides text tokenization and stemming for the lexical
// index. It lower-cases input, splits on non-alphanumeric boundaries,
// removes stop words, and applies a simple suffix-stripping stemmer.
//
// The stemmer is deliberately crude. Conflating fence/fences/fencing into
// one term increases recall on ordinance text at the cost of occasional
// false conflation. The branch order and length thresholds are part of the
// on-disk index contract: changing them invalidates persisted snapshots.
package analyzer

import (
	"strings"
	"unicode"
)

// Tokenize breaks text into lowercase tokens. Non-alphanumeric characters
// become spaces rather than being deleted, so hyphenated forms split into
// separate tokens ("6-foot" -> "6", "foot"). Stop words and single-character
// tokens are dropped.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, text)

	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if len(word) <= 1 {
			continue
		}
		if _, isStop := stopWords[word]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// suffix rules applied by Stem, in priority order. Each rule requires the
// word to be longer than minLen before stripping, to avoid mangling short
// words. At most one suffix is removed; there is no recursion.
var suffixRules = []struct {
	suffix string
	minLen int
}{
	{"ing", 5},
	{"tion", 5},
	{"ment", 5},
	{"ness", 5},
	{"able", 5},
	{"ible", 5},
	{"ous", 5},
	{"ive", 5},
	{"ly", 5},
	{"ed", 5},
	{"er", 5},
	{"es", 5},
}

// Stem reduces a word to an approximate root by stripping one common
// suffix. The first matching rule wins; words that match no rule but end in
// a single "s" (and are longer than 3 characters) lose the plural "s".
func Stem(word string) string {
	for _, rule := range suffixRules {
		if len(word) > rule.minLen && strings.HasSuffix(word, rule.suffix) {
			return word[:len(word)-len(rule.suffix)]
		}
	}
	if len(word) > 3 && strings.HasSuffix(word, "s") {
		return word[:len(word)-1]
	}
	return word
}

// StemAll applies Stem to every token, preserving order
func StemAll(tokens []string) []string {
	stems := make([]string, len(tokens))
	for i, t := range tokens {
		stems[i] = Stem(t)
	}
	return stems
}
