package vectorstore

import "context"

// Store persists chunk vectors and serves nearest-neighbour queries. Writes
// must be serialized by the implementation; reads are safe for unbounded
// concurrency once Persist has completed.
type Store interface {
	// Add appends new entries. Adding an entry whose chunk ID is already
	// indexed fails with ErrDuplicateEntry; a vector of the wrong
	// dimensionality fails with ErrDimensionMismatch.
	Add(ctx context.Context, entries []Entry) error

	// Has reports whether a chunk ID is already indexed.
	Has(chunkID string) bool

	// Query returns the k nearest entries by cosine similarity, ties broken
	// by insertion order. k is capped at the entry count; an empty store
	// yields an empty result.
	Query(ctx context.Context, vector []float32, k int) ([]Result, error)

	// Persist flushes to durable storage. Idempotent, and the on-disk state
	// stays loadable even if the process dies right after it returns.
	Persist(ctx context.Context) error

	// Count returns the number of indexed entries.
	Count() int

	// Dimensions returns the vector dimensionality fixed at creation.
	Dimensions() int
}
