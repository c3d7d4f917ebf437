// Package segment performs the first-pass word segmentation that turns raw
// Chinese/English text into token lists.
package segment

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-ego/gse"

	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

// Segmenter splits raw documents into token lists. Implementations must be
// deterministic for identical input and configuration.
type Segmenter interface {
	Segment(ctx context.Context, texts []string) (corpus.Corpus, error)
}

// Config selects segmentation precision and device.
type Config struct {
	Level      int    // 1 = dictionary DAG, 2 = + HMM, 3 = + HMM and alphanumeric runs
	Device     int    // -1 = CPU, >= 0 = GPU index
	Dictionary string // embedded dictionary name (zh, zh_s, zh_t, ja) or file path
}

// DefaultConfig returns level 1 on CPU with the traditional Chinese dictionary.
func DefaultConfig() Config {
	return Config{Level: 1, Device: -1, Dictionary: "zh_t"}
}

// Validate checks level and device ranges.
func (c Config) Validate() error {
	if c.Level < 1 || c.Level > 3 {
		return fmt.Errorf("segment level must be 1..3, got %d: %w", c.Level, internalerr.ErrInvalidConfig)
	}
	if c.Device < -1 {
		return fmt.Errorf("segment device must be >= -1, got %d: %w", c.Device, internalerr.ErrInvalidConfig)
	}
	return nil
}

// GSE segments text with the gse dictionary segmenter.
type GSE struct {
	seg   gse.Segmenter
	level int
}

// NewGSE loads the dictionary named in cfg. gse runs on the CPU only; a GPU
// index is accepted and noted in the log.
func NewGSE(cfg Config) (*GSE, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Device >= 0 {
		log.Printf("segment: GPU device %d requested; gse runs on CPU", cfg.Device)
	}

	g := &GSE{level: cfg.Level}
	g.seg.AlphaNum = cfg.Level >= 3

	dict := strings.TrimSpace(cfg.Dictionary)
	var err error
	switch {
	case dict == "":
		err = g.seg.LoadDictEmbed()
	case fileExists(dict):
		err = g.seg.LoadDict(dict)
	default:
		err = g.seg.LoadDictEmbed(dict)
	}
	if err != nil {
		return nil, fmt.Errorf("load dictionary %q: %v: %w", dict, err, internalerr.ErrExternal)
	}

	return g, nil
}

// Segment cuts every text in order. Whitespace-only pieces are dropped.
func (g *GSE) Segment(ctx context.Context, texts []string) (corpus.Corpus, error) {
	out := make(corpus.Corpus, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = g.cut(text)
	}
	return out, nil
}

func (g *GSE) cut(text string) corpus.Document {
	var pieces []string
	if g.level == 1 {
		pieces = g.seg.Cut(text)
	} else {
		pieces = g.seg.Cut(text, true)
	}

	doc := make(corpus.Document, 0, len(pieces))
	for _, p := range pieces {
		if strings.TrimSpace(p) == "" {
			continue
		}
		doc = append(doc, p)
	}
	return doc
}

// Func adapts a plain function to Segmenter; handy for tests and for
// calling out to an external segmentation service.
type Func func(ctx context.Context, texts []string) (corpus.Corpus, error)

// Segment implements Segmenter.
func (f Func) Segment(ctx context.Context, texts []string) (corpus.Corpus, error) {
	return f(ctx, texts)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
