package config

// DefaultConfig returns the configuration used when no file or overrides
// are present.
func DefaultConfig() *Config {
	return &Config{
		ContextDir:       "ContextDocuments",
		IndexDir:         ".advisor",
		Include:          []string{"*.csv", "*.pdf"},
		EmbeddingModel:   "text-embedding-3-small",
		OllamaModel:      "nomic-embed-text",
		OllamaBaseURL:    "",
		OllamaDimensions: 768,
		ChunkWords:       400,
		TopK:             6,
	}
}
