package vectorstore

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func unit(dims, axis int) []float32 {
	v := make([]float32, dims)
	v[axis] = 1
	return v
}

// deterministicVector produces a normalized vector from text, so similar
// texts land near each other. Good enough for exercising ranking.
func deterministicVector(dims int, text string) []float32 {
	vec := make([]float32, dims)
	for i, ch := range text {
		idx := (int(ch) + i) % dims
		vec[idx] += 1.0
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func entry(id string, vec []float32) Entry {
	return Entry{
		ChunkID: id,
		Vector:  vec,
		Text:    "text for " + id,
		Metadata: Metadata{
			DocumentID: "doc",
			Source:     "test",
		},
	}
}

func TestNativeSelfRetrieval(t *testing.T) {
	ctx := context.Background()
	store, err := OpenNative(t.TempDir(), 8)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}

	vecs := [][]float32{
		deterministicVector(8, "la finale de la CAN"),
		deterministicVector(8, "les stades du Maroc"),
		deterministicVector(8, "le calendrier des matchs"),
	}
	for i, v := range vecs {
		if err := store.Add(ctx, []Entry{entry(string(rune('a'+i)), v)}); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	// Querying with the exact vector of an indexed chunk returns it first.
	results, err := store.Query(ctx, vecs[1], 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 || results[0].Entry.ChunkID != "b" {
		t.Errorf("self-retrieval failed: %+v", results)
	}
}

func TestNativeDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	store, err := OpenNative(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}

	e := entry("dup", unit(4, 0))
	if err := store.Add(ctx, []Entry{e}); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	err = store.Add(ctx, []Entry{e})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("count after rejected add: got %d, want 1", store.Count())
	}
	if !store.Has("dup") {
		t.Error("Has should report indexed chunk")
	}
}

func TestNativeDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	store, err := OpenNative(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}

	err = store.Add(ctx, []Entry{entry("bad", unit(8, 0))})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on add, got %v", err)
	}

	_, err = store.Query(ctx, unit(8, 0), 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on query, got %v", err)
	}
}

func TestNativeQueryEmptyStore(t *testing.T) {
	store, err := OpenNative(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	results, err := store.Query(context.Background(), unit(4, 0), 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result from empty store, got %d", len(results))
	}
}

func TestNativeKCappedAndOrdered(t *testing.T) {
	ctx := context.Background()
	store, err := OpenNative(t.TempDir(), 4)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}

	// Two identical vectors: tie must resolve by insertion order.
	same := unit(4, 1)
	if err := store.Add(ctx, []Entry{entry("first", same), entry("second", same), entry("far", unit(4, 2))}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := store.Query(ctx, same, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("k not capped to entry count: got %d results", len(results))
	}
	if results[0].Entry.ChunkID != "first" || results[1].Entry.ChunkID != "second" {
		t.Errorf("tie not broken by insertion order: %q then %q",
			results[0].Entry.ChunkID, results[1].Entry.ChunkID)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not ordered by score: %v then %v", results[i-1].Score, results[i].Score)
		}
	}
}

func TestNativePersistAndReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenNative(dir, 4)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	v := deterministicVector(4, "persisté")
	if err := store.Add(ctx, []Entry{entry("p1", v)}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	// Persist is idempotent.
	if err := store.Persist(ctx); err != nil {
		t.Fatalf("second Persist: %v", err)
	}

	reloaded, err := OpenNative(dir, 4)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reloaded.Count() != 1 {
		t.Fatalf("count after reload: got %d, want 1", reloaded.Count())
	}
	results, err := reloaded.Query(ctx, v, 1)
	if err != nil {
		t.Fatalf("Query after reload: %v", err)
	}
	if results[0].Entry.ChunkID != "p1" {
		t.Errorf("reloaded entry mismatch: %+v", results[0].Entry)
	}
	if results[0].Entry.Metadata.Source != "test" {
		t.Errorf("metadata lost across persist: %+v", results[0].Entry.Metadata)
	}
	// Duplicate rejection survives reload.
	if err := reloaded.Add(ctx, []Entry{entry("p1", v)}); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry after reload, got %v", err)
	}
}

func TestNativeWrongDimensionalityOnOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenNative(dir, 4)
	if err != nil {
		t.Fatalf("OpenNative: %v", err)
	}
	if err := store.Add(ctx, []Entry{entry("x", unit(4, 0))}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	_, err = OpenNative(dir, 8)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch opening with wrong dims, got %v", err)
	}
}

func TestNativeCorruptIndexReported(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, nativeFileName), []byte("not a gob stream"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	_, err := OpenNative(dir, 4)
	if !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex, got %v", err)
	}
}
