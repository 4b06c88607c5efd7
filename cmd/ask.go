package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question against the indexed corpus",
	Long: `Answers one question in French, grounded in the indexed corpus.
When the corpus has no supporting content the assistant refuses instead
of guessing.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, store, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	if store.Count() == 0 {
		fmt.Fprintln(os.Stderr, "Index is empty. Run `canrag ingest` first.")
	}

	answer, mode, err := engine.Ask(ctx, nil, question)
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"answer": answer,
			"mode":   string(mode),
		})
	}

	if verbose {
		fmt.Printf("[mode: %s]\n", mode)
	}
	fmt.Println(answer)
	return nil
}
