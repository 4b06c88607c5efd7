package config

// DefaultExcludes are corpus file patterns skipped by default.
var DefaultExcludes = []string{
	".git/**",
	"*.log",
	"*.gz",
	"*.zip",
	"*.db",
	"chroma_db/**",
}

// DefaultConfig returns a Config with sensible defaults. Chunking parameters
// match the corpus the index was originally tuned on: 1000-character chunks
// with a 200-character overlap.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             "gpt-4o-mini",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		CorpusPath:        "data/corpus",
		IndexPath:         "data/index",
		Backend:           BackendNative,
		ChunkSize:         1000,
		ChunkOverlap:      200,
		TopK:              4,
		MaxContextChars:   8000,
		Temperature:       0.7,
		MaxConcurrency:    4,
		Port:              8080,
		Include:           []string{"**"},
		Exclude:           DefaultExcludes,
	}
}
