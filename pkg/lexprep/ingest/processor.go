package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
	"github.com/cognicore/lexprep/pkg/lexprep/normalize"
	"github.com/cognicore/lexprep/pkg/lexprep/stem"
)

// Processor turns one segmented document into its stemmed form:
// trim/lower → half-width → emoji strip → re-split → noise filter → stem
type Processor struct {
	splitter *Splitter
	noise    *NoiseFilter
	stemmer  stem.Stemmer
}

// NewProcessor creates a document processor with the given components.
// A nil noise filter keeps every token; a nil stemmer leaves tokens as is.
func NewProcessor(splitter *Splitter, noise *NoiseFilter, stemmer stem.Stemmer) *Processor {
	if noise == nil {
		noise = NewNoiseFilter(nil)
	}
	if stemmer == nil {
		stemmer = stem.Identity()
	}
	return &Processor{
		splitter: splitter,
		noise:    noise,
		stemmer:  stemmer,
	}
}

// ProcessedDoc represents a document after processing
type ProcessedDoc struct {
	Tokens  corpus.Document
	Raw     int // tokens in the input document
	Split   int // sub-tokens produced by re-splitting
	Dropped int // sub-tokens removed by the noise filter
}

// Clean applies the text transforms of the first stages and returns the
// surviving sub-tokens before stemming.
func (p *Processor) Clean(token string) []string {
	token = strings.ToLower(strings.TrimSpace(token))
	token = normalize.Token(token)

	var pieces []string
	if p.splitter != nil {
		pieces = p.splitter.Split(token)
	} else {
		pieces = strings.Fields(token)
	}
	return pieces
}

// Process runs a document through every stage. Sub-token order follows
// original token order. A stemming failure aborts the document.
func (p *Processor) Process(doc corpus.Document) (ProcessedDoc, error) {
	out := ProcessedDoc{
		Tokens: make(corpus.Document, 0, len(doc)),
		Raw:    len(doc),
	}

	for _, raw := range doc {
		pieces := p.Clean(raw)
		kept := p.noise.Filter(pieces)
		out.Split += len(pieces)
		out.Dropped += len(pieces) - len(kept)

		for _, piece := range kept {
			stemmed, err := p.stemmer.Stem(piece)
			if err != nil {
				if !errors.Is(err, internalerr.ErrStemming) {
					err = fmt.Errorf("%w: %w", err, internalerr.ErrStemming)
				}
				return ProcessedDoc{}, fmt.Errorf("token %q: %w", piece, err)
			}
			if stemmed == "" {
				return ProcessedDoc{}, fmt.Errorf("token %q: empty stem: %w", piece, internalerr.ErrStemming)
			}
			out.Tokens = append(out.Tokens, stemmed)
		}
	}

	return out, nil
}
