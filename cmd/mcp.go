package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zakariaelb/canrag/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the tournament knowledge base to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		engine, store, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		if store.Count() == 0 {
			fmt.Fprintln(os.Stderr, "Warning: index is empty. Run `canrag ingest` first; answers will refuse until then.")
		}

		mcpserver.Version = Version

		fmt.Fprintf(os.Stderr, "canrag MCP server started on stdio (index=%s, chunks=%d)\n", cfg.IndexPath, store.Count())

		srv := mcpserver.NewServer(engine)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
