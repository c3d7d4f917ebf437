package ingest

import (
	"strings"

	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
)

// Splitter re-splits tokens that the upstream segmenter left joined.
// The segmenter is tuned for Chinese script and tends to under-segment
// embedded Latin letters, digits and punctuation.
type Splitter struct {
	delims corpus.Deliminators
}

// NewSplitter creates a splitter for the given deliminators. Empty
// deliminators are rejected.
func NewSplitter(delims corpus.Deliminators) (*Splitter, error) {
	if err := delims.Validate(); err != nil {
		return nil, err
	}
	d := make(corpus.Deliminators, len(delims))
	copy(d, delims)
	return &Splitter{delims: d}, nil
}

// Replace substitutes every deliminator with a single space. Deliminators
// are applied one after another in declared order, each on the output of
// the previous one, so a deliminator that is a substring of a later one
// wins.
func (s *Splitter) Replace(token string) string {
	for _, d := range s.delims {
		token = strings.ReplaceAll(token, d, " ")
	}
	return token
}

// Split replaces deliminators and splits on whitespace runs, dropping
// empty pieces.
func (s *Splitter) Split(token string) []string {
	return strings.Fields(s.Replace(token))
}
