package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CANRAG_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CANRAG_CORPUS_PATH -> corpus_path, etc.
	if err := k.Load(env.Provider("CANRAG_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "CANRAG_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOpenAI:     true,
	ProviderOpenRouter: true,
	ProviderOllama:     true,
}

var validBackends = map[IndexBackend]bool{
	BackendNative:  true,
	BackendChromem: true,
}

// Validate checks that the configuration contains valid values and that every
// required setting is present. All problems are reported at once so the
// operator can fix the environment in a single pass; nothing is ingested or
// served before this check succeeds.
func (c *Config) Validate() error {
	var missing []string

	if c.Provider == "" {
		missing = append(missing, "provider")
	} else if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of openai, openrouter, ollama", c.Provider)
	}
	if c.Model == "" {
		missing = append(missing, "model")
	}
	if c.EmbeddingProvider != "" && !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q", c.EmbeddingProvider)
	}
	if c.EmbeddingModel == "" {
		missing = append(missing, "embedding_model")
	}
	if c.CorpusPath == "" {
		missing = append(missing, "corpus_path")
	}
	if c.IndexPath == "" {
		missing = append(missing, "index_path")
	}

	// Remote providers need credentials before any work starts.
	for _, p := range []ProviderType{c.Provider, c.effectiveEmbeddingProvider()} {
		name := APIKeyEnvVar(p)
		if name != "" && os.Getenv(name) == "" {
			missing = appendUnique(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	if c.Backend != "" && !validBackends[c.Backend] {
		return fmt.Errorf("invalid index_backend %q: must be native or chromem", c.Backend)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap must be non-negative and smaller than chunk_size")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive")
	}
	if c.MaxContextChars <= 0 {
		return fmt.Errorf("max_context_chars must be positive")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}

	return nil
}

// EffectiveEmbeddingProvider returns the embedding provider, falling back to
// the main provider when unset.
func (c *Config) EffectiveEmbeddingProvider() ProviderType {
	return c.effectiveEmbeddingProvider()
}

func (c *Config) effectiveEmbeddingProvider() ProviderType {
	if c.EmbeddingProvider != "" {
		return c.EmbeddingProvider
	}
	return c.Provider
}

// APIKeyEnvVar returns the conventional environment variable name for the API
// key of the given provider. Ollama is local and needs no key.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
