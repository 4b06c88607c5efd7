package cmd

import (
	"fmt"
	"os"

	"github.com/zakariaelb/canrag/internal/config"
	"github.com/zakariaelb/canrag/internal/embeddings"
	"github.com/zakariaelb/canrag/internal/llm"
	"github.com/zakariaelb/canrag/internal/rag"
	"github.com/zakariaelb/canrag/internal/vectorstore"
)

// ollamaEmbeddingDims is the dimensionality of the common local embedding
// models (nomic-embed-text and friends).
const ollamaEmbeddingDims = 768

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `canrag init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
// Shared by the ingest, ask, chat, serve and mcp commands.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EffectiveEmbeddingProvider()

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, ollamaEmbeddingDims, cfg.EmbeddingBaseURL), nil
	default:
		// OpenAI embeddings serve every cloud provider, OpenRouter included.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel), cfg.EmbeddingBaseURL), nil
	}
}

// createLLMProviderFromConfig creates an LLM provider based on config
// settings, wrapping it in a rate limiter when one is configured.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}
	return provider, nil
}

// openStoreFromConfig opens (or creates) the vector index selected by the
// config's backend.
func openStoreFromConfig(cfg *config.Config, embedder embeddings.Embedder) (vectorstore.Store, error) {
	switch cfg.Backend {
	case config.BackendChromem:
		return vectorstore.OpenChromem(cfg.IndexPath, embedder.Dimensions(), embeddings.ToChromemFunc(embedder))
	default:
		return vectorstore.OpenNative(cfg.IndexPath, embedder.Dimensions())
	}
}

// buildEngine wires the full answer pipeline from config.
func buildEngine(cfg *config.Config) (*rag.Engine, vectorstore.Store, error) {
	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	store, err := openStoreFromConfig(cfg, embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index: %w", err)
	}

	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	engine := rag.NewEngine(store, embedder, provider, rag.Options{
		TopK:            cfg.TopK,
		MaxContextChars: cfg.MaxContextChars,
		Temperature:     cfg.Temperature,
	})
	return engine, store, nil
}
