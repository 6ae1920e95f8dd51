package keyword

// stopWords are dropped from every keyword set. The list is a fixed configuration constant.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {},
	"can": {}, "had": {}, "her": {}, "was": {}, "one": {}, "our": {}, "out": {}, "has": {},
	"have": {}, "been": {}, "from": {}, "they": {}, "were": {}, "many": {}, "some": {}, "them": {},
	"this": {}, "that": {}, "with": {}, "will": {}, "would": {}, "there": {}, "their": {}, "what": {},
	"which": {}, "when": {}, "where": {}, "while": {}, "into": {}, "more": {}, "other": {}, "could": {},
	"should": {},
}

// IsStopWord reports whether w (lower case) is excluded from keyword sets.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}
