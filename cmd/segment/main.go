package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/lexprep/internal/dataset"
	"github.com/cognicore/lexprep/internal/segment"
	"github.com/cognicore/lexprep/pkg/lexprep/config"
	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
)

func main() {
	defaults := segment.DefaultConfig()
	var (
		resource = flag.String("resource", "data/raw/projects.csv", "Raw dataset (CSV or JSONL)")
		column   = flag.String("column", dataset.DefaultColumn, "Text column to segment")
		level    = flag.Int("level", defaults.Level, "Segmentation precision 1..3")
		device   = flag.Int("device", defaults.Device, "Device index (-1 = CPU)")
		dict     = flag.String("dict", defaults.Dictionary, "Embedded dictionary name or dictionary file")
		output   = flag.String("output", "data/interim/corpus.json", "Segmented corpus output (.json or .jsonl)")
		cfgPath  = flag.String("config", "", "Optional lexprep.yaml; explicit flags win over its segment section")
	)
	flag.Parse()

	cfg := segment.Config{Level: *level, Device: *device, Dictionary: *dict}
	if *cfgPath != "" {
		fileCfg, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = mergeConfig(fileCfg.Segment, cfg, explicitFlags())
	}

	seg, err := segment.NewGSE(cfg)
	if err != nil {
		log.Fatalf("init segmenter: %v", err)
	}

	n, err := segmentFile(context.Background(), seg, *resource, *column, *output)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("✓ Segmented %d documents into %s", n, *output)
}

// mergeConfig starts from the file's segment section and applies the flags
// the user actually passed.
func mergeConfig(file config.Segment, flags segment.Config, set map[string]bool) segment.Config {
	cfg := segment.Config{Level: file.Level, Device: file.Device, Dictionary: file.Dictionary}
	if set["level"] {
		cfg.Level = flags.Level
	}
	if set["device"] {
		cfg.Device = flags.Device
	}
	if set["dict"] {
		cfg.Dictionary = flags.Dictionary
	}
	return cfg
}

func explicitFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// segmentFile loads the text column, segments it and writes the corpus.
// Nothing is written when any step fails.
func segmentFile(ctx context.Context, seg segment.Segmenter, resource, column, output string) (int, error) {
	texts, err := dataset.Load(resource, column)
	if err != nil {
		return 0, fmt.Errorf("load dataset: %w", err)
	}
	log.Printf("Loaded %d documents from %s", len(texts), resource)

	c, err := seg.Segment(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("segment: %w", err)
	}
	if len(c) != len(texts) {
		return 0, fmt.Errorf("segmenter returned %d documents for %d texts", len(c), len(texts))
	}

	if err := corpus.WriteCorpus(output, c); err != nil {
		return 0, fmt.Errorf("write corpus: %w", err)
	}
	return len(c), nil
}
