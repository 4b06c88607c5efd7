package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zakariaelb/canrag/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and WebSocket chat server",
	Long: `Starts the canrag server exposing POST /api/ask for one-shot questions
and a WebSocket endpoint at /ws for chat sessions with in-memory history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort == 0 {
			servePort = cfg.Port
		}

		engine, store, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Port:     servePort,
			AllowAll: true,
		}, engine, store)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "canrag server v%s starting on port %d\n", Version, servePort)
		fmt.Fprintf(os.Stderr, "  Index: %s (%d chunks)\n", cfg.IndexPath, store.Count())

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}
