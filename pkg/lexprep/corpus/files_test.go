package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

func TestCorpusRoundTrip(t *testing.T) {
	c := Corpus{
		{"luke", "是", "一", "位"},
		{},
		{"<tag>", "a&b", "50%"},
	}

	for _, name := range []string{"docs.json", "docs.jsonl"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			if err := WriteCorpus(path, c); err != nil {
				t.Fatalf("WriteCorpus: %v", err)
			}

			got, err := ReadCorpus(path)
			if err != nil {
				t.Fatalf("ReadCorpus: %v", err)
			}
			if !got.Equal(c) {
				t.Errorf("round trip mismatch: got %v, want %v", got, c)
			}
		})
	}
}

func TestReadCorpusMalformed(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"object.json":  `{"a": 1}`,
		"numbers.json": `[[1, 2]]`,
		"null.json":    `null`,
		"bad.jsonl":    "[\"a\"]\n{oops}\n",
	}

	for name, content := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadCorpus(path); !errors.Is(err, internalerr.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestReadCorpusMissingFile(t *testing.T) {
	_, err := ReadCorpus(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestDeliminatorsRoundTrip(t *testing.T) {
	d := Deliminators{",", "。", " ", "--", "-", ":"}

	for _, name := range []string{"delim.yaml", "delim.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteDeliminators(path, d); err != nil {
				t.Fatalf("WriteDeliminators: %v", err)
			}

			got, err := ReadDeliminators(path)
			if err != nil {
				t.Fatalf("ReadDeliminators: %v", err)
			}
			if len(got) != len(d) {
				t.Fatalf("expected %d deliminators, got %d: %v", len(d), len(got), got)
			}
			for i := range d {
				if got[i] != d[i] {
					t.Errorf("deliminator %d: got %q, want %q", i, got[i], d[i])
				}
			}
		})
	}
}

func TestReadDeliminatorsYAMLTerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delim.yaml")
	content := "terms:\n  - \",\"\n  - \"、\"\n  - \"/\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadDeliminators(path)
	if err != nil {
		t.Fatalf("ReadDeliminators: %v", err)
	}
	want := []string{",", "、", "/"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadDeliminatorsRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delim.json")
	if err := os.WriteFile(path, []byte(`[",", ""]`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadDeliminators(path); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReadDeliminatorsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "delim.pickle")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadDeliminators(path); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestVocabularyRoundTripSorted(t *testing.T) {
	tokens := []string{"run", "jump", "fall", "學生"}

	for _, name := range []string{"vocab.json", "vocab.txt"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := WriteVocabulary(path, tokens); err != nil {
				t.Fatalf("WriteVocabulary: %v", err)
			}

			got, err := ReadVocabulary(path)
			if err != nil {
				t.Fatalf("ReadVocabulary: %v", err)
			}
			want := []string{"fall", "jump", "run", "學生"}
			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("index %d: got %q, want %q", i, got[i], want[i])
				}
			}
		})
	}
}

func TestWriteVocabularyDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")

	if err := WriteVocabulary(a, []string{"b", "a", "c"}); err != nil {
		t.Fatal(err)
	}
	if err := WriteVocabulary(b, []string{"c", "b", "a"}); err != nil {
		t.Fatal(err)
	}

	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if string(da) != string(db) {
		t.Errorf("expected identical bytes, got %q and %q", da, db)
	}
}

func TestWriteOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.json")
	if err := WriteCorpus(path, Corpus{{"old"}}); err != nil {
		t.Fatal(err)
	}
	if err := WriteCorpus(path, Corpus{{"new"}}); err != nil {
		t.Fatal(err)
	}

	got, err := ReadCorpus(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0][0] != "new" {
		t.Errorf("expected overwritten corpus, got %v", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, got %d entries", len(entries))
	}
}

func TestCorpusHelpers(t *testing.T) {
	c := Corpus{{"a", "b"}, {"c"}}
	if c.TokenCount() != 3 {
		t.Errorf("TokenCount = %d, want 3", c.TokenCount())
	}

	clone := c.Clone()
	clone[0][0] = "z"
	if c[0][0] != "a" {
		t.Error("Clone should not share backing arrays")
	}
	if c.Equal(clone) {
		t.Error("Equal should detect modified token")
	}
}

func TestStagedCommitAndDiscard(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.json")
	docPath := filepath.Join(dir, "docs.json")
	if err := os.WriteFile(vocabPath, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	v, err := StageVocabulary(vocabPath, []string{"b", "a"})
	if err != nil {
		t.Fatalf("StageVocabulary: %v", err)
	}
	d, err := StageCorpus(docPath, Corpus{{"a"}})
	if err != nil {
		t.Fatalf("StageCorpus: %v", err)
	}

	// Staging leaves targets untouched
	if data, _ := os.ReadFile(vocabPath); string(data) != "old" {
		t.Errorf("target replaced before commit: %q", data)
	}
	if _, err := os.Stat(docPath); !os.IsNotExist(err) {
		t.Error("document target created before commit")
	}

	if err := v.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := v.Commit(); err != nil {
		t.Errorf("second Commit should be a no-op, got %v", err)
	}
	d.Discard()
	v.Discard()

	got, err := ReadVocabulary(vocabPath)
	if err != nil || len(got) != 2 || got[0] != "a" {
		t.Errorf("ReadVocabulary = %v, %v", got, err)
	}
	if _, err := os.Stat(docPath); !os.IsNotExist(err) {
		t.Error("discarded document should not exist")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only vocab.json, found %v", names)
	}
}

func TestStageUnderRegularFileFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := StageCorpus(filepath.Join(blocker, "docs.json"), Corpus{}); err == nil {
		t.Error("expected error staging under a regular file")
	}
}
