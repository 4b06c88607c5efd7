package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .canrag.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to canrag! Let's configure your assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "openrouter", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: defaultModelFor(cfg.Provider),
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.Model = model

	cfg.EmbeddingProvider = embeddingProviderFor(cfg.Provider)
	if cfg.EmbeddingProvider == ProviderOllama {
		embedModelPrompt := promptui.Prompt{
			Label:   "Embedding model",
			Default: "nomic-embed-text",
		}
		embedModel, err := embedModelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("embedding model: %w", err)
		}
		cfg.EmbeddingModel = embedModel
	}

	corpusPrompt := promptui.Prompt{
		Label:   "Corpus directory (collected documents)",
		Default: cfg.CorpusPath,
	}
	corpusPath, err := corpusPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("corpus path: %w", err)
	}
	cfg.CorpusPath = corpusPath

	indexPrompt := promptui.Prompt{
		Label:   "Index directory",
		Default: cfg.IndexPath,
	}
	indexPath, err := indexPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("index path: %w", err)
	}
	cfg.IndexPath = indexPath

	backendPrompt := promptui.Select{
		Label: "Vector index backend",
		Items: []string{"native", "chromem"},
	}
	_, backendStr, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	cfg.Backend = IndexBackend(backendStr)

	topKPrompt := promptui.Prompt{
		Label:   "Chunks retrieved per question",
		Default: strconv.Itoa(cfg.TopK),
		Validate: func(s string) error {
			n, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	topKStr, err := topKPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("top_k: %w", err)
	}
	cfg.TopK, _ = strconv.Atoi(strings.TrimSpace(topKStr))

	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment before running canrag ingest.\n", envVar)
		}
	}

	configPath := ".canrag.yml"
	if err := cfg.Save(configPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", configPath)
	return cfg, nil
}

func defaultModelFor(p ProviderType) string {
	switch p {
	case ProviderOpenRouter:
		return "meta-llama/llama-3.3-70b-instruct"
	case ProviderOllama:
		return "llama3"
	default:
		return "gpt-4o-mini"
	}
}

// embeddingProviderFor returns the default embedding provider for a given
// LLM provider. OpenAI embeddings serve every cloud provider; Ollama embeds
// locally.
func embeddingProviderFor(p ProviderType) ProviderType {
	if p == ProviderOllama {
		return ProviderOllama
	}
	return ProviderOpenAI
}
