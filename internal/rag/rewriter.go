package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/zakariaelb/canrag/internal/llm"
)

// Rewrite condenses the chat history and the latest utterance into a
// standalone question suitable for retrieval. With no history there is
// nothing to resolve, so the utterance passes through without a model call.
func Rewrite(ctx context.Context, provider llm.Provider, history []llm.Message, utterance string) (string, error) {
	if len(history) == 0 {
		return utterance, nil
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: rephraseInstruction})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: utterance})

	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("rewriting question: %w", err)
	}

	standalone := strings.TrimSpace(resp.Content)
	if standalone == "" {
		return utterance, nil
	}
	return standalone, nil
}
