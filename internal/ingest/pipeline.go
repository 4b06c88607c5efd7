package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/zakariaelb/canrag/internal/chunker"
	"github.com/zakariaelb/canrag/internal/corpus"
	"github.com/zakariaelb/canrag/internal/embeddings"
	"github.com/zakariaelb/canrag/internal/progress"
	"github.com/zakariaelb/canrag/internal/vectorstore"
)

// Options configures a Pipeline.
type Options struct {
	Walk           corpus.WalkConfig
	ChunkSize      int
	ChunkOverlap   int
	MaxConcurrency int
}

// Pipeline runs the corpus-to-index flow: walk, load, normalize, chunk,
// embed, store. Documents are processed concurrently; the store serializes
// writes internally. A failing document is logged and skipped, never fatal
// for the run.
type Pipeline struct {
	store    vectorstore.Store
	embedder embeddings.Embedder
	registry *Registry
	reporter progress.Reporter
	logger   *log.Logger
	opts     Options
}

func NewPipeline(store vectorstore.Store, embedder embeddings.Embedder, registry *Registry, reporter progress.Reporter, logger *log.Logger, opts Options) *Pipeline {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 4
	}
	if reporter == nil {
		reporter = progress.NopReporter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		store:    store,
		embedder: embedder,
		registry: registry,
		reporter: reporter,
		logger:   logger,
		opts:     opts,
	}
}

// Run ingests the corpus and persists the index. Re-running against an
// unchanged corpus is a no-op: unchanged documents are skipped by content
// hash, and chunk IDs are content-addressed so nothing is indexed twice.
func (p *Pipeline) Run(ctx context.Context) (RunStats, error) {
	stats := RunStats{StartedAt: time.Now()}

	files, err := corpus.Walk(p.opts.Walk)
	if err != nil {
		return stats, fmt.Errorf("ingest: %w", err)
	}
	stats.Seen = len(files)

	p.reporter.Start(len(files))
	defer p.reporter.Finish()

	jobs := make(chan corpus.FileInfo)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var done int

	for i := 0; i < p.opts.MaxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fi := range jobs {
				added, err := p.ingestFile(ctx, fi)

				mu.Lock()
				done++
				switch {
				case err != nil:
					stats.Failed++
					p.logger.Printf("ingest: %s: %v", fi.RelPath, err)
				case added < 0:
					stats.Skipped++
				default:
					stats.Ingested++
					stats.ChunksAdded += added
				}
				p.reporter.Update(done, fi.RelPath)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, fi := range files {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- fi:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if err := p.store.Persist(ctx); err != nil {
		return stats, fmt.Errorf("ingest: persisting index: %w", err)
	}

	stats.FinishedAt = time.Now()
	if p.registry != nil {
		if _, err := p.registry.RecordRun(stats); err != nil {
			p.logger.Printf("ingest: recording run: %v", err)
		}
	}
	return stats, nil
}

// ingestFile processes one corpus file. Returns the number of chunks added,
// or -1 when the document was skipped as unchanged.
func (p *Pipeline) ingestFile(ctx context.Context, fi corpus.FileInfo) (int, error) {
	if p.registry != nil {
		hash, known, err := p.registry.DocumentHash(fi.RelPath)
		if err != nil {
			return 0, err
		}
		if known && hash == fi.ContentHash {
			return -1, nil
		}
	}

	doc, err := corpus.Load(fi)
	if err != nil {
		return 0, err
	}
	cleaned := doc.Clean()

	chunks, err := chunker.Split(doc.ID, cleaned.CleanText, p.opts.ChunkSize, p.opts.ChunkOverlap)
	if err != nil {
		return 0, fmt.Errorf("chunking: %w", err)
	}

	// Content-addressed IDs make re-ingestion of a changed file additive:
	// unchanged chunks are already indexed and get filtered here.
	fresh := chunks[:0]
	for _, c := range chunks {
		if !p.store.Has(c.ChunkID) {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		p.recordDocument(doc, len(chunks))
		return 0, nil
	}

	texts := make([]string, len(fresh))
	for i, c := range fresh {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != len(fresh) {
		return 0, fmt.Errorf("embedding: got %d vectors for %d chunks", len(vectors), len(fresh))
	}

	now := time.Now()
	entries := make([]vectorstore.Entry, len(fresh))
	for i, c := range fresh {
		entries[i] = vectorstore.Entry{
			ChunkID: c.ChunkID,
			Vector:  vectors[i],
			Text:    c.Text,
			Metadata: vectorstore.Metadata{
				DocumentID:  c.DocumentID,
				Source:      doc.Source,
				StartOffset: c.StartOffset,
				Length:      c.Length,
				IngestedAt:  now,
			},
		}
	}
	if err := p.store.Add(ctx, entries); err != nil {
		return 0, fmt.Errorf("indexing: %w", err)
	}

	p.recordDocument(doc, len(chunks))
	return len(entries), nil
}

func (p *Pipeline) recordDocument(doc corpus.Document, chunkCount int) {
	if p.registry == nil {
		return
	}
	if err := p.registry.RecordDocument(doc.ID, doc.Source, doc.ContentHash, chunkCount); err != nil {
		p.logger.Printf("ingest: registry: %s: %v", doc.ID, err)
	}
}
