package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zakariaelb/canrag/internal/corpus"
)

var mergeOut string

var mergeCmd = &cobra.Command{
	Use:   "merge [source-dir]",
	Short: "Consolidate raw source files into a single master corpus document",
	Long: `Reads every text, markdown, JSON and HTML file under the source
directory, cleans each one, and writes a single deduplicated master corpus
document with per-source provenance headers. Point corpus_path at the output
directory before running ingest. Re-running on an already merged corpus is a
no-op.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeOut, "out", "", "output file (default <corpus_path>/master_corpus.txt)")
	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sourceDir := cfg.CorpusPath
	if len(args) == 1 {
		sourceDir = args[0]
	}
	outPath := mergeOut
	if outPath == "" {
		outPath = filepath.Join(cfg.CorpusPath, "master_corpus.txt")
	}

	files, err := corpus.Walk(corpus.WalkConfig{
		RootDir: sourceDir,
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", sourceDir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no corpus files found under %s", sourceDir)
	}

	var sections []corpus.Section
	for _, fi := range files {
		// Skip a previous merge output so the command stays idempotent.
		abs, _ := filepath.Abs(outPath)
		if fi.Path == abs {
			continue
		}

		doc, err := corpus.Load(fi)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", fi.RelPath, err)
			continue
		}

		cleaned := corpus.Normalize(doc.RawText, doc.IsHTML)
		if cleaned == "" {
			continue
		}
		sections = append(sections, corpus.Section{
			Name: filepath.Base(fi.RelPath),
			Text: cleaned,
		})
	}

	merged := corpus.Merge(sections)
	if merged == "" {
		return fmt.Errorf("every file under %s was empty after cleaning", sourceDir)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(merged), 0o644); err != nil {
		return fmt.Errorf("writing master corpus: %w", err)
	}

	fmt.Printf("Merged %d source file(s) into %s (%d sections kept)\n",
		len(files), outPath, len(corpus.ParseMerged(merged)))
	return nil
}
