// Package dataset reads the raw text column out of downloaded project files.
package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
)

// DefaultColumn is the text column of the project dataset.
const DefaultColumn = "content"

const maxLine = 16 << 20

// Load dispatches on the file extension: .jsonl/.ndjson go through
// LoadJSONL, everything else is treated as CSV.
func Load(path, column string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadJSONL(path, column)
	default:
		return LoadCSV(path, column)
	}
}

// LoadCSV returns the values of column for every record, in file order.
// The first row is the header.
func LoadCSV(path, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: empty file: %w", path, internalerr.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %v: %w", path, err, internalerr.ErrInvalidInput)
	}

	idx := -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%s: no column %q: %w", path, column, internalerr.ErrInvalidInput)
	}

	var texts []string
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: record %d: %v: %w", path, line, err, internalerr.ErrInvalidInput)
		}
		if idx >= len(rec) {
			texts = append(texts, "")
			continue
		}
		texts = append(texts, rec[idx])
	}

	return texts, nil
}

// LoadJSONL returns the string value of field from each JSON object line.
// Malformed lines are skipped with a warning; a file with no usable lines
// is an error.
func LoadJSONL(path, field string) ([]string, error) {
	if field == "" {
		field = DefaultColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var texts []string
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", lineNo, path, err)
			continue
		}
		v, ok := rec[field]
		if !ok {
			log.Printf("Warning: line %d in %s has no field %q", lineNo, path, field)
			continue
		}
		s, ok := v.(string)
		if !ok {
			log.Printf("Warning: line %d in %s: field %q is not a string", lineNo, path, field)
			continue
		}
		texts = append(texts, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(texts) == 0 {
		return nil, fmt.Errorf("no %q values found in %s: %w", field, path, internalerr.ErrInvalidInput)
	}
	return texts, nil
}
