package lexprep

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
	"github.com/cognicore/lexprep/pkg/lexprep/ingest"
	"github.com/cognicore/lexprep/pkg/lexprep/stem"
	"github.com/cognicore/lexprep/pkg/lexprep/vocab"
)

const progressEvery = 1000

// Preprocessor runs the document processor over a whole corpus and builds
// the vocabulary.
type Preprocessor struct {
	stemmer    stem.Stemmer
	noiseWords []string
	workers    int
	logf       func(format string, args ...any)
}

// Options configures a Preprocessor
type Options struct {
	Stemmer stem.Stemmer // nil means Porter

	// NoiseWords disqualify any token containing them. nil selects
	// ingest.DefaultNoiseWords; an empty non-nil slice disables filtering.
	NoiseWords []string

	Workers int // <= 0 means GOMAXPROCS

	// Logf receives progress lines. Optional.
	Logf func(format string, args ...any)
}

// New creates a Preprocessor with the given options
func New(opts Options) *Preprocessor {
	p := &Preprocessor{
		stemmer:    opts.Stemmer,
		noiseWords: opts.NoiseWords,
		workers:    opts.Workers,
		logf:       opts.Logf,
	}
	if p.stemmer == nil {
		p.stemmer = stem.Porter()
	}
	if p.noiseWords == nil {
		p.noiseWords = ingest.DefaultNoiseWords()
	}
	if p.workers <= 0 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	return p
}

// Stats summarizes a run
type Stats struct {
	Documents  int
	RawTokens  int
	SubTokens  int
	Dropped    int
	Tokens     int
	Vocabulary int
}

// Result holds the outputs of a run. Documents[i] derives from input
// document i.
type Result struct {
	Documents  corpus.Corpus
	Vocabulary vocab.Vocabulary
	Stats      Stats
}

// Run processes every document independently and then aggregates the
// vocabulary in a single step. The first failing document cancels the rest
// and no partial result is returned.
func (p *Preprocessor) Run(ctx context.Context, c corpus.Corpus, delims corpus.Deliminators) (*Result, error) {
	splitter, err := ingest.NewSplitter(delims)
	if err != nil {
		return nil, err
	}
	proc := ingest.NewProcessor(splitter, ingest.NewNoiseFilter(p.noiseWords), p.stemmer)

	processed := make([]ingest.ProcessedDoc, len(c))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range c {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := proc.Process(c[i])
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			processed[i] = out

			if n := done.Add(1); p.logf != nil && n%progressEvery == 0 {
				p.logf("Processed %d/%d documents", n, len(c))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// errgroup only reports task errors; a parent cancelled after the last
	// task started still aborts the run.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{
		Documents: make(corpus.Corpus, len(c)),
		Stats:     Stats{Documents: len(c)},
	}
	for i, out := range processed {
		res.Documents[i] = out.Tokens
		res.Stats.RawTokens += out.Raw
		res.Stats.SubTokens += out.Split
		res.Stats.Dropped += out.Dropped
		res.Stats.Tokens += len(out.Tokens)
	}
	res.Vocabulary = vocab.Aggregate(res.Documents)
	res.Stats.Vocabulary = res.Vocabulary.Len()

	return res, nil
}

// Run is a convenience wrapper using default options and the given stemmer.
func Run(ctx context.Context, c corpus.Corpus, delims corpus.Deliminators, stemmer stem.Stemmer) (*Result, error) {
	return New(Options{Stemmer: stemmer}).Run(ctx, c, delims)
}
