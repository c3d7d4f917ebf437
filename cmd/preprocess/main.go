package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/markkurossi/tabulate"

	"github.com/cognicore/lexprep/pkg/lexprep"
	"github.com/cognicore/lexprep/pkg/lexprep/config"
	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
	"github.com/cognicore/lexprep/pkg/lexprep/store"
	"github.com/cognicore/lexprep/pkg/lexprep/store/sqlite"
)

// options mirrors the command-line flags
type options struct {
	resource   string
	delims     string
	tokenPath  string
	docPath    string
	configPath string
	stemmer    string
	workers    int
	dbPath     string
}

func main() {
	var opts options
	flag.StringVar(&opts.resource, "resource", "data/interim/corpus.json", "Segmented corpus (.json or .jsonl)")
	flag.StringVar(&opts.delims, "delims", "", "Deliminator file (.yaml or .json); overrides the config file")
	flag.StringVar(&opts.tokenPath, "token", "data/processed/vocab.json", "Vocabulary output (.json or .txt)")
	flag.StringVar(&opts.docPath, "doc", "data/processed/docs.json", "Processed corpus output (.json or .jsonl)")
	flag.StringVar(&opts.configPath, "config", "", "Optional lexprep.yaml")
	flag.StringVar(&opts.stemmer, "stemmer", "", "Stemmer override: porter, snowball or none")
	flag.IntVar(&opts.workers, "workers", 0, "Worker count override (0 = config or GOMAXPROCS)")
	flag.StringVar(&opts.dbPath, "db", "", "Optional SQLite file recording run history")
	runs := flag.Int("runs", 0, "List the N most recent runs in --db and exit")
	fromRun := flag.String("from-run", "", "Rewrite --token and --doc from a recorded run in --db and exit")
	flag.Parse()

	ctx := context.Background()

	if *runs > 0 || *fromRun != "" {
		if opts.dbPath == "" {
			log.Fatal("--runs and --from-run require --db")
		}
		st, err := sqlite.OpenSQLite(ctx, opts.dbPath)
		if err != nil {
			log.Fatalf("open run store: %v", err)
		}
		defer st.Close()

		if *runs > 0 {
			err = listRuns(ctx, st, *runs, os.Stdout)
		} else {
			err = restoreRun(ctx, st, *fromRun, opts.tokenPath, opts.docPath)
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	res, runID, err := preprocess(ctx, opts)
	if err != nil {
		log.Fatal(err)
	}

	s := res.Stats
	log.Printf("Documents: %d  raw tokens: %d  sub-tokens: %d  dropped: %d  output tokens: %d",
		s.Documents, s.RawTokens, s.SubTokens, s.Dropped, s.Tokens)
	log.Printf("✓ Vocabulary of %d tokens written to %s", s.Vocabulary, opts.tokenPath)
	log.Printf("✓ Documents written to %s", opts.docPath)
	if runID != "" {
		log.Printf("✓ Run %s recorded", runID)
	}
}

// preprocess loads the configuration and corpus, runs the pipeline and
// writes both artifacts. Both files are staged and the run is recorded
// before either file replaces its target; a failure at any step leaves no
// new artifact and no recorded run behind.
func preprocess(ctx context.Context, opts options) (*lexprep.Result, string, error) {
	loader := config.Loader{
		ConfigPath:      opts.configPath,
		DeliminatorPath: opts.delims,
		Stemmer:         opts.stemmer,
		Workers:         opts.workers,
		StorePath:       opts.dbPath,
		Logf:            log.Printf,
	}
	comp, err := loader.Load()
	if err != nil {
		return nil, "", err
	}
	log.Printf("Loaded %d deliminators, stemmer %s", len(comp.Deliminators), comp.Config.Stemmer.Algorithm)

	c, err := corpus.ReadCorpus(opts.resource)
	if err != nil {
		return nil, "", fmt.Errorf("load corpus: %w", err)
	}
	log.Printf("Loaded %d documents from %s", len(c), opts.resource)

	start := time.Now()
	res, err := comp.Preprocessor.Run(ctx, c, comp.Deliminators)
	if err != nil {
		return nil, "", fmt.Errorf("preprocess: %w", err)
	}
	log.Printf("Processed %d documents in %s", len(res.Documents), time.Since(start).Round(time.Millisecond))

	vocabulary := res.Vocabulary.Sorted()
	vocabFile, err := corpus.StageVocabulary(opts.tokenPath, vocabulary)
	if err != nil {
		return nil, "", fmt.Errorf("write vocabulary: %w", err)
	}
	defer vocabFile.Discard()

	docFile, err := corpus.StageCorpus(opts.docPath, res.Documents)
	if err != nil {
		return nil, "", fmt.Errorf("write documents: %w", err)
	}
	defer docFile.Discard()

	var (
		st    store.Store
		runID string
	)
	if path := comp.Config.Store.Path; path != "" {
		st, err = sqlite.OpenSQLite(ctx, path)
		if err != nil {
			return nil, "", fmt.Errorf("open run store: %w", err)
		}
		defer st.Close()

		logPreviousRun(ctx, st, len(vocabulary))
		runID, err = st.SaveRun(ctx, store.Run{
			Deliminators: comp.Deliminators,
			Documents:    res.Documents,
			Vocabulary:   vocabulary,
		})
		if err != nil {
			return nil, "", fmt.Errorf("save run: %w", err)
		}
	}

	if err := commitOutputs(vocabFile, docFile); err != nil {
		if st != nil {
			if delErr := st.DeleteRun(ctx, runID); delErr != nil {
				log.Printf("Warning: could not remove run %s: %v", runID, delErr)
			}
		}
		return nil, "", err
	}

	return res, runID, nil
}

// commitOutputs renames both staged files into place. If the second rename
// fails the first file is removed again.
func commitOutputs(vocabFile, docFile *corpus.Staged) error {
	if err := vocabFile.Commit(); err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	if err := docFile.Commit(); err != nil {
		os.Remove(vocabFile.Path())
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

func logPreviousRun(ctx context.Context, st store.Store, vocabSize int) {
	prev, found, err := st.LatestRun(ctx)
	if err != nil {
		log.Printf("Warning: read latest run: %v", err)
		return
	}
	if !found {
		return
	}
	log.Printf("Previous run %s: %d vocabulary tokens (now %d, %+d)",
		prev.ID, len(prev.Vocabulary), vocabSize, vocabSize-len(prev.Vocabulary))
}

// listRuns prints the most recent runs, newest first.
func listRuns(ctx context.Context, st store.Store, limit int, w io.Writer) error {
	infos, err := st.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Run")
	tab.Header("Created")
	tab.Header("Documents").SetAlign(tabulate.MR)
	tab.Header("Tokens").SetAlign(tabulate.MR)
	tab.Header("Vocabulary").SetAlign(tabulate.MR)

	for _, info := range infos {
		row := tab.Row()
		row.Column(info.ID)
		row.Column(info.CreatedAt.Format(time.RFC3339))
		row.Column(fmt.Sprintf("%d", info.Documents))
		row.Column(fmt.Sprintf("%d", info.Tokens))
		row.Column(fmt.Sprintf("%d", info.Vocabulary))
	}

	_, err = fmt.Fprint(w, tab.String())
	return err
}

// restoreRun rewrites the vocabulary and document files of a recorded run.
func restoreRun(ctx context.Context, st store.Store, id, tokenPath, docPath string) error {
	run, err := st.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("load run %s: %w", id, err)
	}

	vocabFile, err := corpus.StageVocabulary(tokenPath, run.Vocabulary)
	if err != nil {
		return fmt.Errorf("write vocabulary: %w", err)
	}
	defer vocabFile.Discard()

	docFile, err := corpus.StageCorpus(docPath, run.Documents)
	if err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	defer docFile.Discard()

	if err := commitOutputs(vocabFile, docFile); err != nil {
		return err
	}
	log.Printf("✓ Restored run %s (%d documents, %d vocabulary tokens)", run.ID, len(run.Documents), len(run.Vocabulary))
	return nil
}
