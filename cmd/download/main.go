package main

import (
	"context"
	"flag"
	"log"

	"github.com/cognicore/lexprep/internal/fetch"
)

func main() {
	var (
		source = flag.String("url", "", "Dataset URL; Google Drive share links are rewritten (required)")
		output = flag.String("output", "data/raw/projects.csv", "Destination path")
	)
	flag.Parse()

	if *source == "" {
		log.Fatal("--url is required")
	}

	f := fetch.New()
	f.Logf = log.Printf
	if err := f.Fetch(context.Background(), *source, *output); err != nil {
		log.Fatalf("download: %v", err)
	}

	log.Printf("✓ Saved %s", *output)
}
