package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "canrag",
	Short: "Retrieval-augmented question answering over the CAN tournament corpus",
	Long: `canrag indexes a collected corpus of Africa Cup of Nations documents
into a semantic vector store and answers questions in French, grounded
strictly in that corpus. It serves a REST/WebSocket API for chat UIs and
integrates with AI agents via MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".canrag.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
