package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/lexprep/pkg/lexprep/corpus"
	"github.com/cognicore/lexprep/pkg/lexprep/internalerr"
	"github.com/cognicore/lexprep/pkg/lexprep/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	deliminators TEXT NOT NULL,
	documents INTEGER NOT NULL,
	tokens INTEGER NOT NULL,
	vocabulary INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_tokens (
	run_id TEXT NOT NULL,
	doc_index INTEGER NOT NULL,
	position INTEGER NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(run_id, doc_index, position),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_vocabulary (
	run_id TEXT NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(run_id, token),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_vocabulary_token ON run_vocabulary(token);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveRun writes the run and all of its rows in one transaction
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) (string, error) {
	if err := r.Deliminators.Validate(); err != nil {
		return "", err
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = store.NewID(r.CreatedAt)
	}

	delims := r.Deliminators
	if delims == nil {
		delims = corpus.Deliminators{}
	}
	delimJSON, err := json.Marshal(delims)
	if err != nil {
		return "", err
	}

	vocab := uniqueSorted(r.Vocabulary)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	const runStmt = `
INSERT INTO runs (id, created_at, deliminators, documents, tokens, vocabulary)
VALUES (?, ?, ?, ?, ?, ?);
`
	if _, err := tx.ExecContext(
		ctx,
		runStmt,
		r.ID,
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(delimJSON),
		len(r.Documents),
		r.Documents.TokenCount(),
		len(vocab),
	); err != nil {
		return "", fmt.Errorf("insert run %s: %w", r.ID, err)
	}

	tokStmt, err := tx.PrepareContext(ctx, `INSERT INTO run_tokens (run_id, doc_index, position, token) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer tokStmt.Close()

	for i, doc := range r.Documents {
		for pos, tok := range doc {
			if _, err := tokStmt.ExecContext(ctx, r.ID, i, pos, tok); err != nil {
				return "", fmt.Errorf("insert token %d/%d: %w", i, pos, err)
			}
		}
	}

	vocabStmt, err := tx.PrepareContext(ctx, `INSERT INTO run_vocabulary (run_id, token) VALUES (?, ?)`)
	if err != nil {
		return "", err
	}
	defer vocabStmt.Close()

	for _, tok := range vocab {
		if _, err := vocabStmt.ExecContext(ctx, r.ID, tok); err != nil {
			return "", fmt.Errorf("insert vocabulary %q: %w", tok, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return r.ID, nil
}

// GetRun loads a full run
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	info, delims, err := s.getRunRow(ctx, id)
	if err != nil {
		return store.Run{}, err
	}

	run := store.Run{
		ID:           info.ID,
		CreatedAt:    info.CreatedAt,
		Deliminators: delims,
		Documents:    make(corpus.Corpus, info.Documents),
	}
	for i := range run.Documents {
		run.Documents[i] = corpus.Document{}
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT doc_index, token FROM run_tokens
WHERE run_id = ?
ORDER BY doc_index, position`, id)
	if err != nil {
		return store.Run{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var tok string
		if err := rows.Scan(&idx, &tok); err != nil {
			return store.Run{}, err
		}
		if idx < 0 || idx >= len(run.Documents) {
			return store.Run{}, fmt.Errorf("run %s: document index %d out of range", id, idx)
		}
		run.Documents[idx] = append(run.Documents[idx], tok)
	}
	if err := rows.Err(); err != nil {
		return store.Run{}, err
	}

	run.Vocabulary, err = s.vocabulary(ctx, id)
	if err != nil {
		return store.Run{}, err
	}
	return run, nil
}

func (s *sqliteStore) vocabulary(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT token FROM run_vocabulary WHERE run_id = ? ORDER BY token`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vocab := []string{}
	for rows.Next() {
		var tok string
		if err := rows.Scan(&tok); err != nil {
			return nil, err
		}
		vocab = append(vocab, tok)
	}
	// SQLite's default collation is byte order, same as sort.Strings.
	return vocab, rows.Err()
}

func (s *sqliteStore) getRunRow(ctx context.Context, id string) (store.RunInfo, corpus.Deliminators, error) {
	var (
		info      store.RunInfo
		createdAt string
		delimJSON string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, deliminators, documents, tokens, vocabulary
FROM runs WHERE id = ?`, id).Scan(
		&info.ID, &createdAt, &delimJSON, &info.Documents, &info.Tokens, &info.Vocabulary,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return store.RunInfo{}, nil, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.RunInfo{}, nil, err
	}

	info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.RunInfo{}, nil, fmt.Errorf("run %s: created_at: %w", id, err)
	}

	var delims corpus.Deliminators
	if err := json.Unmarshal([]byte(delimJSON), &delims); err != nil {
		return store.RunInfo{}, nil, fmt.Errorf("run %s: deliminators: %w", id, err)
	}
	return info, delims, nil
}

// LatestRun returns the run with the greatest ID
func (s *sqliteStore) LatestRun(ctx context.Context) (store.Run, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		return store.Run{}, false, err
	}
	return run, true, nil
}

// ListRuns returns run summaries, newest first
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.RunInfo, error) {
	query := `SELECT id, created_at, documents, tokens, vocabulary FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	infos := []store.RunInfo{}
	for rows.Next() {
		var info store.RunInfo
		var createdAt string
		if err := rows.Scan(&info.ID, &createdAt, &info.Documents, &info.Tokens, &info.Vocabulary); err != nil {
			return nil, err
		}
		info.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("run %s: created_at: %w", info.ID, err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteRun removes a run and its rows. Child rows are deleted explicitly
// since foreign_keys is a per-connection pragma.
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_tokens WHERE run_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM run_vocabulary WHERE run_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func uniqueStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func uniqueSorted(values []string) []string {
	out := uniqueStrings(values)
	sort.Strings(out)
	return out
}
