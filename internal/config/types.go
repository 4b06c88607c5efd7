package config

// ProviderType identifies a language-model or embedding provider.
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderOllama     ProviderType = "ollama"
)

// IndexBackend selects the vector index implementation.
type IndexBackend string

const (
	BackendNative  IndexBackend = "native"
	BackendChromem IndexBackend = "chromem"
)

// Config is the top-level canrag configuration, corresponding to .canrag.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingBaseURL  string       `yaml:"embedding_base_url" koanf:"embedding_base_url"`

	CorpusPath string       `yaml:"corpus_path" koanf:"corpus_path"`
	IndexPath  string       `yaml:"index_path" koanf:"index_path"`
	Backend    IndexBackend `yaml:"index_backend" koanf:"index_backend"`

	ChunkSize       int     `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap    int     `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK            int     `yaml:"top_k" koanf:"top_k"`
	MaxContextChars int     `yaml:"max_context_chars" koanf:"max_context_chars"`
	Temperature     float64 `yaml:"temperature" koanf:"temperature"`
	MaxConcurrency  int     `yaml:"max_concurrency" koanf:"max_concurrency"`

	// RequestsPerMinute caps LLM calls. Zero means unlimited.
	RequestsPerMinute int `yaml:"requests_per_minute" koanf:"requests_per_minute"`

	Port int `yaml:"port" koanf:"port"`

	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}
