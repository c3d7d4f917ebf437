package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
)

// Store persists the outputs of preprocessing runs
type Store interface {
	Close() error

	// SaveRun stores a run atomically and returns its ID. A run with an
	// empty ID gets a new ULID; CreatedAt defaults to now.
	SaveRun(ctx context.Context, r Run) (string, error)
	GetRun(ctx context.Context, id string) (Run, error)
	LatestRun(ctx context.Context) (Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
	DeleteRun(ctx context.Context, id string) error
}

// Run is one persisted preprocessing result
type Run struct {
	ID           string
	CreatedAt    time.Time
	Deliminators corpus.Deliminators
	Documents    corpus.Corpus
	Vocabulary   []string // sorted
}

// RunInfo summarizes a run without its payload
type RunInfo struct {
	ID         string
	CreatedAt  time.Time
	Documents  int
	Tokens     int
	Vocabulary int
}

// Info derives the summary of r.
func (r Run) Info() RunInfo {
	return RunInfo{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		Documents:  len(r.Documents),
		Tokens:     r.Documents.TokenCount(),
		Vocabulary: len(r.Vocabulary),
	}
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID that sorts after every ID issued before it by this
// process.
func NewID(t time.Time) string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), idEntropy).String()
}
