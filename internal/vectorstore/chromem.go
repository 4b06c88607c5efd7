package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"
)

const (
	collectionName  = "corpus"
	chromemFileName = "chromem.gob.gz"
	idsFileName     = "ids.json"
)

// ChromemStore implements Store on top of chromem-go. chromem does not expose
// its ID set, so a sidecar file carries the indexed chunk IDs to enforce the
// duplicate-rejection invariant across restarts.
type ChromemStore struct {
	mu         sync.Mutex
	dir        string
	dims       int
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
	ids        map[string]bool
}

// OpenChromem loads the chromem index persisted at dir, or creates an empty
// one. embedFunc is only used by chromem for texts added without a
// precomputed vector, which this store never does, but the collection
// requires one.
func OpenChromem(dir string, dimensions int, embedFunc chromem.EmbeddingFunc) (*ChromemStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("vectorstore: invalid dimensionality %d", dimensions)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("vectorstore: create index dir: %w", err)
	}

	s := &ChromemStore{
		dir:       dir,
		dims:      dimensions,
		db:        chromem.NewDB(),
		embedFunc: embedFunc,
		ids:       make(map[string]bool),
	}

	dbPath := filepath.Join(dir, chromemFileName)
	if _, err := os.Stat(dbPath); err == nil {
		if err := s.db.ImportFromFile(dbPath, ""); err != nil {
			return nil, fmt.Errorf("%w: importing %s: %v", ErrCorruptIndex, dbPath, err)
		}
		col := s.db.GetCollection(collectionName, embedFunc)
		if col == nil {
			return nil, fmt.Errorf("%w: collection %q not found after import", ErrCorruptIndex, collectionName)
		}
		s.collection = col

		if err := s.loadIDs(); err != nil {
			return nil, err
		}
		if len(s.ids) != col.Count() {
			return nil, fmt.Errorf("%w: id sidecar lists %d entries, collection holds %d",
				ErrCorruptIndex, len(s.ids), col.Count())
		}
		return s, nil
	}

	col, err := s.db.GetOrCreateCollection(collectionName, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: create collection: %w", err)
	}
	s.collection = col
	return s, nil
}

func (s *ChromemStore) loadIDs() error {
	data, err := os.ReadFile(filepath.Join(s.dir, idsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: id sidecar missing", ErrCorruptIndex)
		}
		return fmt.Errorf("vectorstore: read id sidecar: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("%w: decoding id sidecar: %v", ErrCorruptIndex, err)
	}
	for _, id := range ids {
		s.ids[id] = true
	}
	return nil
}

func (s *ChromemStore) Add(ctx context.Context, entries []Entry) error {
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

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:        e.ChunkID,
			Content:   e.Text,
			Embedding: e.Vector,
			Metadata:  metadataToMap(e.Metadata),
		}
	}
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("vectorstore: chromem add: %w", err)
	}
	for _, e := range entries {
		s.ids[e.ChunkID] = true
	}
	return nil
}

func (s *ChromemStore) Has(chunkID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[chunkID]
}

func (s *ChromemStore) Query(ctx context.Context, vector []float32, k int) ([]Result, error) {
	if len(vector) != s.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index has %d",
			ErrDimensionMismatch, len(vector), s.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	// chromem requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: chromem query: %w", err)
	}

	out := make([]Result, len(results))
	for i, r := range results {
		out[i] = Result{
			Entry: Entry{
				ChunkID:  r.ID,
				Vector:   r.Embedding,
				Text:     r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Score: r.Similarity,
		}
	}
	return out, nil
}

func (s *ChromemStore) Persist(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.ExportToFile(filepath.Join(s.dir, chromemFileName), true, ""); err != nil {
		return fmt.Errorf("vectorstore: chromem export: %w", err)
	}

	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("vectorstore: encode id sidecar: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, idsFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("vectorstore: create temp sidecar: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("vectorstore: write id sidecar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vectorstore: close temp sidecar: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, idsFileName)); err != nil {
		return fmt.Errorf("vectorstore: replace id sidecar: %w", err)
	}
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

func (s *ChromemStore) Dimensions() int {
	return s.dims
}

func metadataToMap(m Metadata) map[string]string {
	return map[string]string{
		"document_id":  m.DocumentID,
		"source":       m.Source,
		"start_offset": strconv.Itoa(m.StartOffset),
		"length":       strconv.Itoa(m.Length),
		"ingested_at":  m.IngestedAt.Format(time.RFC3339),
	}
}

func mapToMetadata(m map[string]string) Metadata {
	startOffset, _ := strconv.Atoi(m["start_offset"])
	length, _ := strconv.Atoi(m["length"])
	ingestedAt, _ := time.Parse(time.RFC3339, m["ingested_at"])

	return Metadata{
		DocumentID:  m["document_id"],
		Source:      m["source"],
		StartOffset: startOffset,
		Length:      length,
		IngestedAt:  ingestedAt,
	}
}
