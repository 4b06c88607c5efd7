package rag

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/zakariaelb/canrag/internal/embeddings"
	"github.com/zakariaelb/canrag/internal/llm"
	"github.com/zakariaelb/canrag/internal/vectorstore"
)

// Options tunes retrieval and generation.
type Options struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
	// MaxContextChars caps the interpolated context block; lowest-relevance
	// chunks are dropped first to fit.
	MaxContextChars int
	// Temperature is passed to the LLM for answer generation.
	Temperature float64
}

// Engine runs the full question-answering pipeline: rewrite, retrieve,
// compose, generate. It holds no per-session state; history is passed in by
// the caller on every Ask.
type Engine struct {
	store    vectorstore.Store
	embedder embeddings.Embedder
	provider llm.Provider
	opts     Options
}

func NewEngine(store vectorstore.Store, embedder embeddings.Embedder, provider llm.Provider, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 4
	}
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = 8000
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		provider: provider,
		opts:     opts,
	}
}

// Ask answers the utterance grounded in the indexed corpus. Empty retrieval
// returns the mode's refusal phrase without calling the model; any
// infrastructure failure is returned as an error, never disguised as a
// refusal.
func (e *Engine) Ask(ctx context.Context, history []llm.Message, utterance string) (string, Mode, error) {
	mode := ClassifyMode(utterance)

	standalone, err := Rewrite(ctx, e.provider, history, utterance)
	if err != nil {
		return "", mode, err
	}

	results, err := e.Search(ctx, standalone, e.opts.TopK)
	if err != nil {
		return "", mode, err
	}
	if len(results) == 0 {
		return mode.RefusalPhrase(), mode, nil
	}

	contextBlock := buildContext(results, e.opts.MaxContextChars)

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: mode.SystemPrompt(contextBlock)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: utterance})

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Messages:    messages,
		Temperature: e.opts.Temperature,
	})
	if err != nil {
		return "", mode, fmt.Errorf("generating answer: %w", err)
	}

	return strings.TrimSpace(resp.Content), mode, nil
}

// Search embeds the query and returns the k nearest chunks. Exposed for
// callers that want raw retrieval without generation.
func (e *Engine) Search(ctx context.Context, query string, k int) ([]vectorstore.Result, error) {
	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	results, err := e.store.Query(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	return results, nil
}

// buildContext concatenates chunk texts in relevance order, stopping before
// the block would exceed the budget. The top chunk is always included, hard
// truncated if it alone overflows.
func buildContext(results []vectorstore.Result, budget int) string {
	var b strings.Builder
	for i, r := range results {
		text := r.Entry.Text
		if i == 0 {
			if len(text) > budget {
				cut := budget
				for cut > 0 && !utf8.RuneStart(text[cut]) {
					cut--
				}
				text = text[:cut]
			}
			b.WriteString(text)
			continue
		}
		if b.Len()+2+len(text) > budget {
			break
		}
		b.WriteString("\n\n")
		b.WriteString(text)
	}
	return b.String()
}
