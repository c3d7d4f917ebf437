package vocab

import (
	"sort"

	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
)

// Vocabulary is a set of stemmed tokens.
type Vocabulary map[string]struct{}

// New creates a vocabulary holding the given tokens.
func New(tokens ...string) Vocabulary {
	v := make(Vocabulary, len(tokens))
	v.Add(tokens...)
	return v
}

// Aggregate folds every document of c into one vocabulary. The result does
// not depend on document order.
func Aggregate(c corpus.Corpus) Vocabulary {
	v := make(Vocabulary)
	for _, doc := range c {
		v.Add(doc...)
	}
	return v
}

// Add inserts tokens into the set.
func (v Vocabulary) Add(tokens ...string) {
	for _, t := range tokens {
		v[t] = struct{}{}
	}
}

// Contains reports whether token is in the set.
func (v Vocabulary) Contains(token string) bool {
	_, ok := v[token]
	return ok
}

// Len returns the number of distinct tokens.
func (v Vocabulary) Len() int { return len(v) }

// Sorted returns the tokens in byte order.
func (v Vocabulary) Sorted() []string {
	out := make([]string, 0, len(v))
	for t := range v {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same tokens.
func (v Vocabulary) Equal(other Vocabulary) bool {
	if len(v) != len(other) {
		return false
	}
	for t := range v {
		if _, ok := other[t]; !ok {
			return false
		}
	}
	return true
}
