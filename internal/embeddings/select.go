package embeddings

import "advisor/internal/config"

// NewFromConfig picks the embedding backend once, at construction. The
// remote variant wins when both an API key and a model are configured,
// then the local variant, then the placeholder. Missing credentials are
// a configuration degradation, not an error; callers should check for
// PlaceholderName and warn that semantic ranking is disabled.
func NewFromConfig(cfg *config.Config, openAIKey string) Embedder {
	if openAIKey != "" && cfg.EmbeddingModel != "" {
		return NewOpenAIEmbedder(openAIKey, cfg.EmbeddingModel)
	}
	if cfg.OllamaModel != "" {
		return NewOllamaEmbedder(cfg.OllamaModel, cfg.OllamaDimensions, cfg.OllamaBaseURL)
	}
	return Placeholder{}
}
