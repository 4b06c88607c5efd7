package vectorstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	chromem "github.com/philippgille/chromem-go"
)

// testEmbedFunc is required by the chromem collection but never invoked:
// entries always carry precomputed vectors.
func testEmbedFunc(dims int) chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		return deterministicVector(dims, text), nil
	}
}

func TestChromemAddAndQuery(t *testing.T) {
	ctx := context.Background()
	store, err := OpenChromem(t.TempDir(), 16, testEmbedFunc(16))
	if err != nil {
		t.Fatalf("OpenChromem: %v", err)
	}

	vecA := deterministicVector(16, "la finale à Rabat")
	vecB := deterministicVector(16, "les groupes de la compétition")
	if err := store.Add(ctx, []Entry{entry("a", vecA), entry("b", vecB)}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if store.Count() != 2 {
		t.Fatalf("Count: got %d, want 2", store.Count())
	}

	results, err := store.Query(ctx, vecA, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 1 || results[0].Entry.ChunkID != "a" {
		t.Errorf("self-retrieval failed: %+v", results)
	}
}

func TestChromemDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	store, err := OpenChromem(t.TempDir(), 8, testEmbedFunc(8))
	if err != nil {
		t.Fatalf("OpenChromem: %v", err)
	}

	e := entry("dup", deterministicVector(8, "dup"))
	if err := store.Add(ctx, []Entry{e}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Add(ctx, []Entry{e}); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}
}

func TestChromemPersistAndReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenChromem(dir, 8, testEmbedFunc(8))
	if err != nil {
		t.Fatalf("OpenChromem: %v", err)
	}
	v := deterministicVector(8, "persistance")
	if err := store.Add(ctx, []Entry{entry("p1", v)}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reloaded, err := OpenChromem(dir, 8, testEmbedFunc(8))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reloaded.Count() != 1 {
		t.Fatalf("count after reload: got %d, want 1", reloaded.Count())
	}
	if err := reloaded.Add(ctx, []Entry{entry("p1", v)}); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry after reload, got %v", err)
	}
}

func TestChromemMissingSidecarIsCorrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := OpenChromem(dir, 8, testEmbedFunc(8))
	if err != nil {
		t.Fatalf("OpenChromem: %v", err)
	}
	if err := store.Add(ctx, []Entry{entry("x", deterministicVector(8, "x"))}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := store.Persist(ctx); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, idsFileName)); err != nil {
		t.Fatalf("remove sidecar: %v", err)
	}

	_, err = OpenChromem(dir, 8, testEmbedFunc(8))
	if !errors.Is(err, ErrCorruptIndex) {
		t.Errorf("expected ErrCorruptIndex without sidecar, got %v", err)
	}
}
