package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zakariaelb/canrag/internal/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session in the terminal",
	Long: `Opens an interactive conversation with the assistant. Follow-up
questions are resolved against the chat history; type /reset to start the
conversation over and /quit to leave. History lives in memory only.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, store, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("canrag chat — %d chunks indexed. /reset clears history, /quit exits.\n\n", store.Count())

	var history []llm.Message
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Print("vous> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch input {
		case "/quit", "/exit":
			return nil
		case "/reset":
			history = nil
			fmt.Println("Conversation effacée.")
			continue
		}

		answer, mode, err := engine.Ask(ctx, history, input)
		if err != nil {
			// Errors stay errors in the conversation, never refusals.
			fmt.Fprintf(os.Stderr, "erreur: %v\n", err)
			continue
		}

		history = append(history,
			llm.Message{Role: llm.RoleUser, Content: input},
			llm.Message{Role: llm.RoleAssistant, Content: answer},
		)

		if verbose {
			fmt.Printf("[mode: %s]\n", mode)
		}
		fmt.Printf("assistant> %s\n\n", answer)
	}
}
