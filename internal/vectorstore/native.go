package vectorstore

import (
	"context"
	"encoding/gob"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const nativeFileName = "index.gob"

// nativeState is the on-disk representation of the native store.
type nativeState struct {
	Dimensions int
	Entries    []Entry
}

// NativeStore is a flat, gob-persisted vector index with brute-force cosine
// search. The corpus is a few thousand chunks at most, so exact scan beats
// the operational cost of an ANN structure.
type NativeStore struct {
	mu    sync.RWMutex
	dir   string
	dims  int
	items []Entry
	ids   map[string]bool
}

// OpenNative loads the index persisted at dir, or creates an empty one if
// none exists. A persisted index with a different dimensionality fails with
// ErrDimensionMismatch; an undecodable file fails with ErrCorruptIndex.
func OpenNative(dir string, dimensions int) (*NativeStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vectorstore: invalid dimensionality %d", dimensions)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vectorstore: create index dir: %w", err)
	}

	s := &NativeStore{
		dir:  dir,
		dims: dimensions,
		ids:  make(map[string]bool),
	}

	path := filepath.Join(dir, nativeFileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vectorstore: open %s: %w", path, err)
	}
	defer f.Close()

	var state nativeState
	if err := gob.NewDecoder(f).Decode(&state); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCorruptIndex, path, err)
	}
	if state.Dimensions != dimensions {
		return nil, fmt.Errorf("%w: index has %d dimensions, configured embedder produces %d",
			ErrDimensionMismatch, state.Dimensions, dimensions)
	}

	s.items = state.Entries
	for _, e := range s.items {
		if s.ids[e.ChunkID] {
			return nil, fmt.Errorf("%w: duplicate chunk id %s on disk", ErrCorruptIndex, e.ChunkID)
		}
		s.ids[e.ChunkID] = true
	}
	return s, nil
}

func (s *NativeStore) Add(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if len(e.Vector) != s.dims {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				ErrDimensionMismatch, e.ChunkID, len(e.Vector), s.dims)
		}
		if s.ids[e.ChunkID] {
			return fmt.Errorf("%w: %s", ErrDuplicateEntry, e.ChunkID)
		}
	}
	for _, e := range entries {
		s.items = append(s.items, e)
		s.ids[e.ChunkID] = true
	}
	return nil
}

func (s *NativeStore) Has(chunkID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[chunkID]
}

func (s *NativeStore) Query(_ context.Context, vector []float32, k int) ([]Result, error) {
	if len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index has %d",
			ErrDimensionMismatch, len(vector), s.dims)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 || len(s.items) == 0 {
		return nil, nil
	}
	if k > len(s.items) {
		k = len(s.items)
	}

	scores := make([]float32, len(s.items))
	order := make([]int, len(s.items))
	for i := range s.items {
		scores[i] = cosine(s.items[i].Vector, vector)
		order[i] = i
	}

	// Stable sort keeps insertion order for equal scores.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	results := make([]Result, 0, k)
	for _, idx := range order[:k] {
		results = append(results, Result{Entry: s.items[idx], Score: scores[idx]})
	}
	return results, nil
}

// Persist writes the index to a temp file and renames it into place, so a
// reader never observes a partially written index and an interrupt leaves
// the previous state intact.
func (s *NativeStore) Persist(_ context.Context) error {
	s.mu.RLock()
	state := nativeState{Dimensions: s.dims, Entries: s.items}
	s.mu.RUnlock()

	tmp, err := os.CreateTemp(s.dir, nativeFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("vectorstore: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(state); err != nil {
		tmp.Close()
		return fmt.Errorf("vectorstore: encode index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("vectorstore: sync index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vectorstore: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, nativeFileName)); err != nil {
		return fmt.Errorf("vectorstore: replace index file: %w", err)
	}
	return nil
}

func (s *NativeStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *NativeStore) Dimensions() int {
	return s.dims
}

func cosine(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
