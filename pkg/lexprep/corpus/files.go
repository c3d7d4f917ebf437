package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

const (
	dirPerm  os.FileMode = 0755
	filePerm os.FileMode = 0644
)

// ReadCorpus loads a corpus from a .json (array of arrays) or .jsonl
// (one array per line) file.
func ReadCorpus(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl":
		return decodeCorpusLines(path, data)
	default:
		var c Corpus
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode corpus %s: %v: %w", path, err, internalerr.ErrInvalidInput)
		}
		if c == nil {
			return nil, fmt.Errorf("decode corpus %s: not an array: %w", path, internalerr.ErrInvalidInput)
		}
		return fillNil(c), nil
	}
}

func decodeCorpusLines(path string, data []byte) (Corpus, error) {
	c := Corpus{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var doc Document
		if err := json.Unmarshal([]byte(text), &doc); err != nil {
			return nil, fmt.Errorf("decode corpus %s line %d: %v: %w", path, line, err, internalerr.ErrInvalidInput)
		}
		c = append(c, doc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus %s: %w", path, err)
	}
	return fillNil(c), nil
}

// fillNil turns JSON null documents into empty ones so callers can
// index without nil checks.
func fillNil(c Corpus) Corpus {
	for i := range c {
		if c[i] == nil {
			c[i] = Document{}
		}
	}
	return c
}

// WriteCorpus atomically writes the corpus, choosing the encoding from the
// file extension (.jsonl for JSON lines, anything else JSON).
func WriteCorpus(path string, c Corpus) error {
	return commit(StageCorpus(path, c))
}

// StageCorpus encodes the corpus into a temp file beside path without
// replacing path. See Staged.
func StageCorpus(path string, c Corpus) (*Staged, error) {
	var buf bytes.Buffer
	c = fillNil(c.Clone())

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if strings.ToLower(filepath.Ext(path)) == ".jsonl" {
		for _, doc := range c {
			if err := enc.Encode(doc); err != nil {
				return nil, fmt.Errorf("encode corpus: %w", err)
			}
		}
	} else if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode corpus: %w", err)
	}

	return stage(path, buf.Bytes())
}

// deliminatorFile mirrors the stoplist layout used for other term lists.
type deliminatorFile struct {
	Terms []string `yaml:"terms"`
}

// ReadDeliminators loads a deliminator set from .yaml/.yml (a "terms" list)
// or .json (an array of strings). Declared order is preserved.
func ReadDeliminators(path string) (Deliminators, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deliminators %s: %w", path, err)
	}

	var d Deliminators
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var f deliminatorFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode deliminators %s: %v: %w", path, err, internalerr.ErrInvalidInput)
		}
		d = f.Terms
	case ".json":
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode deliminators %s: %v: %w", path, err, internalerr.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("deliminators %s: unsupported extension: %w", path, internalerr.ErrInvalidInput)
	}

	if d == nil {
		d = Deliminators{}
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("deliminators %s: %w", path, err)
	}
	return d, nil
}

// WriteDeliminators atomically writes a deliminator set as YAML or JSON.
func WriteDeliminators(path string, d Deliminators) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d == nil {
		d = Deliminators{}
	}

	var data []byte
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(deliminatorFile{Terms: d})
	case ".json":
		data, err = json.Marshal(d)
	default:
		return fmt.Errorf("deliminators %s: unsupported extension: %w", path, internalerr.ErrInvalidInput)
	}
	if err != nil {
		return fmt.Errorf("encode deliminators: %w", err)
	}
	return writeFileAtomic(path, data)
}

// ReadVocabulary loads a vocabulary from .json (array) or .txt (one token
// per line). The result is sorted.
func ReadVocabulary(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	var tokens []string
	if strings.ToLower(filepath.Ext(path)) == ".txt" {
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimRight(line, "\r")
			if line == "" {
				continue
			}
			tokens = append(tokens, line)
		}
	} else if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("decode vocabulary %s: %v: %w", path, err, internalerr.ErrInvalidInput)
	}

	if tokens == nil {
		tokens = []string{}
	}
	sort.Strings(tokens)
	return tokens, nil
}

// WriteVocabulary atomically writes the tokens in sorted order so that
// identical sets produce identical bytes.
func WriteVocabulary(path string, tokens []string) error {
	return commit(StageVocabulary(path, tokens))
}

// StageVocabulary encodes the sorted tokens into a temp file beside path
// without replacing path.
func StageVocabulary(path string, tokens []string) (*Staged, error) {
	sorted := make([]string, len(tokens))
	copy(sorted, tokens)
	sort.Strings(sorted)

	var buf bytes.Buffer
	if strings.ToLower(filepath.Ext(path)) == ".txt" {
		for _, t := range sorted {
			buf.WriteString(t)
			buf.WriteByte('\n')
		}
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(sorted); err != nil {
			return nil, fmt.Errorf("encode vocabulary: %w", err)
		}
	}
	return stage(path, buf.Bytes())
}

// Staged is an encoded artifact synced to a temp file in its target's
// directory. Commit renames it over the target; Discard removes it. Staging
// every output first lets a caller replace several files only once all of
// them, and anything else the run depends on, have succeeded.
type Staged struct {
	path string
	tmp  string
}

// Path returns the target path.
func (s *Staged) Path() string { return s.path }

// Commit renames the temp file into place. Calling it again is a no-op.
func (s *Staged) Commit() error {
	if s.tmp == "" {
		return nil
	}
	if err := os.Rename(s.tmp, s.path); err != nil {
		return fmt.Errorf("rename %s to %s: %w", s.tmp, s.path, err)
	}
	s.tmp = ""
	return nil
}

// Discard removes an uncommitted temp file. It is safe after Commit.
func (s *Staged) Discard() {
	if s.tmp != "" {
		os.Remove(s.tmp)
		s.tmp = ""
	}
}

func commit(s *Staged, err error) error {
	if err != nil {
		return err
	}
	if err := s.Commit(); err != nil {
		s.Discard()
		return err
	}
	return nil
}

// writeFileAtomic writes data to a temp file next to path, fsyncs it and
// renames it into place. The parent directory is created when missing.
func writeFileAtomic(path string, data []byte) error {
	return commit(stage(path, data))
}

func stage(path string, data []byte) (*Staged, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".lexprep-*")
	if err != nil {
		return nil, fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("chmod %s: %w", tmpPath, err)
	}

	return &Staged{path: path, tmp: tmpPath}, nil
}
