package config

import (
	"fmt"

	"github.com/cognicore/lexprep/pkg/lexprep"
	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
	"github.com/cognicore/lexprep/pkg/lexprep/stem"
)

// Loader loads configuration files and constructs components
type Loader struct {
	ConfigPath      string
	DeliminatorPath string // overrides Config.Deliminators when set

	// Optional overrides applied after the file is read
	Stemmer   string
	Workers   int
	StorePath string

	Logf func(format string, args ...any)
}

// Components holds all loaded configuration components
type Components struct {
	Config       Config
	Preprocessor *lexprep.Preprocessor
	Deliminators corpus.Deliminators
	Stemmer      stem.Stemmer
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		loaded, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = *loaded
	}

	if l.Stemmer != "" {
		cfg.Stemmer.Algorithm = l.Stemmer
	}
	if l.Workers > 0 {
		cfg.Workers = l.Workers
	}
	if l.DeliminatorPath != "" {
		cfg.Deliminators = l.DeliminatorPath
	}
	if l.StorePath != "" {
		cfg.Store.Path = l.StorePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	comp := &Components{Config: cfg}

	// Load deliminators
	if cfg.Deliminators != "" {
		d, err := corpus.ReadDeliminators(cfg.Deliminators)
		if err != nil {
			return nil, fmt.Errorf("load deliminators: %w", err)
		}
		comp.Deliminators = d
	} else {
		comp.Deliminators = corpus.Deliminators{}
	}

	// Build stemmer
	s, err := stem.ByName(cfg.Stemmer.Algorithm, cfg.Stemmer.Language)
	if err != nil {
		return nil, fmt.Errorf("build stemmer: %w", err)
	}
	comp.Stemmer = stem.Cached(s, cfg.Stemmer.CacheSize)

	comp.Preprocessor = lexprep.New(lexprep.Options{
		Stemmer:    comp.Stemmer,
		NoiseWords: cfg.NoiseWords,
		Workers:    cfg.Workers,
		Logf:       l.Logf,
	})

	return comp, nil
}
