package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zakariaelb/canrag/internal/corpus"
	"github.com/zakariaelb/canrag/internal/ingest"
	"github.com/zakariaelb/canrag/internal/progress"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index the collected corpus into the vector store",
	Long: `Walks the corpus directory, normalizes and chunks every document,
embeds the chunks and adds them to the vector index. Unchanged documents
are skipped, so re-running after a fresh scrape only processes what
changed.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	store, err := openStoreFromConfig(cfg, embedder)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}

	registry, err := ingest.OpenRegistry(filepath.Join(cfg.IndexPath, "registry.db"))
	if err != nil {
		return fmt.Errorf("opening registry: %w", err)
	}
	defer registry.Close()

	pipeline := ingest.NewPipeline(store, embedder, registry, progress.NewReporter(), nil, ingest.Options{
		Walk: corpus.WalkConfig{
			RootDir: cfg.CorpusPath,
			Include: cfg.Include,
			Exclude: cfg.Exclude,
		},
		ChunkSize:      cfg.ChunkSize,
		ChunkOverlap:   cfg.ChunkOverlap,
		MaxConcurrency: cfg.MaxConcurrency,
	})

	stats, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Ingestion complete: %d documents seen, %d ingested, %d skipped, %d failed, %d chunks added\n",
		stats.Seen, stats.Ingested, stats.Skipped, stats.Failed, stats.ChunksAdded)
	fmt.Printf("Index now holds %d chunks (%s backend)\n", store.Count(), cfg.Backend)
	return nil
}
