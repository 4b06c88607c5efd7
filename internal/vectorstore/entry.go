package vectorstore

import (
	"errors"
	"time"
)

// ErrDuplicateEntry is returned when an entry with an already-indexed chunk
// ID is added. Chunk IDs are content-addressed, so a duplicate points at an
// ingestion logic bug and is never swallowed.
var ErrDuplicateEntry = errors.New("vectorstore: duplicate chunk id")

// ErrCorruptIndex is returned when a persisted index cannot be decoded. The
// operator decides whether to discard and rebuild; the store never silently
// serves from a partially loaded index.
var ErrCorruptIndex = errors.New("vectorstore: corrupt index")

// ErrDimensionMismatch is returned when a vector's dimensionality does not
// match the index. It is fatal: it means the embedding model changed and the
// index must be rebuilt.
var ErrDimensionMismatch = errors.New("vectorstore: vector dimension mismatch")

// Entry is a persisted (chunk, vector) tuple. Entries are append-only: once
// added they are never mutated, only queried.
type Entry struct {
	ChunkID  string
	Vector   []float32
	Text     string
	Metadata Metadata
}

// Metadata carries chunk provenance for traceability.
type Metadata struct {
	DocumentID  string
	Source      string
	StartOffset int
	Length      int
	IngestedAt  time.Time
}

// Result pairs an entry with its relevance score, highest first.
type Result struct {
	Entry Entry
	Score float32
}
