package ingest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Registry tracks what has been ingested: one row per corpus document with
// its content hash, plus a log of ingestion runs. It is what makes re-running
// ingest against an unchanged corpus a no-op.
type Registry struct {
	*sql.DB
	path string
}

// OpenRegistry creates or opens the SQLite registry at the given path.
func OpenRegistry(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating registry directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening registry: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("pinging registry: %w", err)
	}

	r := &Registry{DB: sqlDB, path: path}
	if err := r.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return r, nil
}

// OpenMemoryRegistry creates an in-memory registry (useful for testing).
func OpenMemoryRegistry() (*Registry, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory registry: %w", err)
	}

	r := &Registry{DB: sqlDB, path: ":memory:"}
	if err := r.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return r, nil
}

func (r *Registry) migrate() error {
	_, err := r.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL DEFAULT '',
    content_hash TEXT NOT NULL,
    chunk_count INTEGER NOT NULL DEFAULT 0,
    ingested_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);
CREATE INDEX IF NOT EXISTS idx_documents_hash ON documents(content_hash);

CREATE TABLE IF NOT EXISTS ingestion_runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    finished_at DATETIME NOT NULL,
    documents_seen INTEGER NOT NULL DEFAULT 0,
    documents_ingested INTEGER NOT NULL DEFAULT 0,
    documents_skipped INTEGER NOT NULL DEFAULT 0,
    documents_failed INTEGER NOT NULL DEFAULT 0,
    chunks_added INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON ingestion_runs(started_at);
`

// DocumentHash returns the stored content hash for a document ID, or ok=false
// when the document has never been ingested.
func (r *Registry) DocumentHash(id string) (string, bool, error) {
	var hash string
	err := r.QueryRow(`SELECT content_hash FROM documents WHERE id = ?`, id).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying document %s: %w", id, err)
	}
	return hash, true, nil
}

// RecordDocument upserts the document's hash and chunk count after a
// successful ingestion.
func (r *Registry) RecordDocument(id, source, contentHash string, chunkCount int) error {
	_, err := r.Exec(`
		INSERT INTO documents (id, source, content_hash, chunk_count, ingested_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			content_hash = excluded.content_hash,
			chunk_count = excluded.chunk_count,
			ingested_at = excluded.ingested_at`,
		id, source, contentHash, chunkCount)
	if err != nil {
		return fmt.Errorf("recording document %s: %w", id, err)
	}
	return nil
}

// DocumentCount returns the number of registered documents.
func (r *Registry) DocumentCount() (int, error) {
	var n int
	if err := r.QueryRow(`SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// RunStats summarizes one ingestion run.
type RunStats struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	Seen        int
	Ingested    int
	Skipped     int
	Failed      int
	ChunksAdded int
}

// RecordRun appends the run to the ingestion log and returns its ID.
func (r *Registry) RecordRun(s RunStats) (string, error) {
	id := uuid.NewString()
	_, err := r.Exec(`
		INSERT INTO ingestion_runs
			(id, started_at, finished_at, documents_seen, documents_ingested,
			 documents_skipped, documents_failed, chunks_added)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.StartedAt.UTC().Format(time.RFC3339), s.FinishedAt.UTC().Format(time.RFC3339),
		s.Seen, s.Ingested, s.Skipped, s.Failed, s.ChunksAdded)
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return id, nil
}
