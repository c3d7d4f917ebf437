package corpus

import (
	"fmt"
	"strings"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

// Document is an ordered sequence of tokens in original text order.
type Document []string

// Corpus is an ordered sequence of documents.
type Corpus []Document

// Deliminators is an ordered list of literal substrings that mark token
// boundaries. Entries are applied in declared order.
type Deliminators []string

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	out := make(Document, len(d))
	copy(out, d)
	return out
}

// Clone returns a deep copy of the corpus.
func (c Corpus) Clone() Corpus {
	out := make(Corpus, len(c))
	for i, d := range c {
		out[i] = d.Clone()
	}
	return out
}

// TokenCount returns the total number of tokens across all documents.
func (c Corpus) TokenCount() int {
	n := 0
	for _, d := range c {
		n += len(d)
	}
	return n
}

// Equal reports whether two corpora hold the same documents in the same order.
func (c Corpus) Equal(other Corpus) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if len(c[i]) != len(other[i]) {
			return false
		}
		for j := range c[i] {
			if c[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Validate rejects empty deliminators. An empty entry would insert a
// space between every character during replacement.
func (d Deliminators) Validate() error {
	for i, s := range d {
		if s == "" {
			return fmt.Errorf("deliminator %d is empty: %w", i, internalerr.ErrInvalidInput)
		}
	}
	return nil
}

// String renders the set for log lines.
func (d Deliminators) String() string {
	quoted := make([]string, len(d))
	for i, s := range d {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, " ") + "]"
}
