package config

// Config is the top-level advisor configuration, corresponding to
// .advisor.yml. The OpenAI API key is never stored here; it is read from
// the OPENAI_API_KEY environment variable.
type Config struct {
	// ContextDir holds the source corpus: course CSVs and handbook PDFs.
	ContextDir string `yaml:"context_dir" koanf:"context_dir"`

	// IndexDir is where the persistent vector index and the ingest
	// manifest live.
	IndexDir string `yaml:"index_dir" koanf:"index_dir"`

	// Include lists glob patterns (matched against lower-cased file
	// names) selecting which context files are ingested.
	Include []string `yaml:"include" koanf:"include"`

	// EmbeddingModel is the remote (OpenAI) embedding model. The remote
	// variant is used only when both this and OPENAI_API_KEY are set.
	EmbeddingModel string `yaml:"embedding_model" koanf:"embedding_model"`

	// OllamaModel is the local embedding model, used when the remote
	// variant is not configured. Empty disables the local variant and
	// falls back to the placeholder embedder.
	OllamaModel      string `yaml:"ollama_model" koanf:"ollama_model"`
	OllamaBaseURL    string `yaml:"ollama_base_url" koanf:"ollama_base_url"`
	OllamaDimensions int    `yaml:"ollama_dimensions" koanf:"ollama_dimensions"`

	// ChunkWords is the word-count window for splitting handbook text.
	ChunkWords int `yaml:"chunk_words" koanf:"chunk_words"`

	// TopK is the default number of records a retrieval returns.
	TopK int `yaml:"top_k" koanf:"top_k"`
}
