// Package keyword derives normalized keyword sets from text and scores their overlap.
package keyword

import (
	"regexp"
	"strings"
)

// MinTokenLength is the shortest token kept in a keyword set.
const MinTokenLength = 3

var tokenRegex = regexp.MustCompile(`[a-z]+`)

// Set is an immutable keyword set. Tokens keep their first-occurrence order.
type Set struct {
	tokens []string
	index  map[string]struct{}
}

// Extract tokenizes text into a keyword set: lower-cased maximal runs of ASCII letters,
// at least MinTokenLength long, stop words removed.
func Extract(text string) Set {
	matches := tokenRegex.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(matches))
	index := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if len(m) < MinTokenLength || IsStopWord(m) {
			continue
		}
		if _, dup := index[m]; dup {
			continue
		}
		index[m] = struct{}{}
		tokens = append(tokens, m)
	}
	return Set{tokens: tokens, index: index}
}

// FromTokens rebuilds a set from stored tokens (storage hydration).
// Tokens are re-normalized so a tampered store cannot smuggle stop words or short tokens in.
func FromTokens(tokens []string) Set {
	return Extract(strings.Join(tokens, " "))
}

// Tokens returns a copy of the tokens in first-occurrence order.
func (s Set) Tokens() []string {
	out := make([]string, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Len returns the number of distinct tokens.
func (s Set) Len() int { return len(s.tokens) }

// IsEmpty reports whether the set has no tokens.
func (s Set) IsEmpty() bool { return len(s.tokens) == 0 }

// Contains reports whether token is in the set.
func (s Set) Contains(token string) bool {
	_, ok := s.index[token]
	return ok
}

// String joins the tokens with single spaces. This is the persisted form.
func (s Set) String() string { return strings.Join(s.tokens, " ") }

// Similarity returns the Jaccard index |A ∩ B| / |A ∪ B|. Empty sets score 0.
func Similarity(a, b Set) float64 {
	if a.IsEmpty() || b.IsEmpty() {
		return 0
	}
	small, large := a, b
	if small.Len() > large.Len() {
		small, large = large, small
	}
	inter := 0
	for _, tok := range small.tokens {
		if large.Contains(tok) {
			inter++
		}
	}
	union := a.Len() + b.Len() - inter
	return float64(inter) / float64(union)
}
