package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"advisor/internal/config"
	"advisor/internal/embeddings"
	"advisor/internal/vectorstore"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newEmbedder selects the embedding backend once for this process and
// warns when the degraded placeholder is in use.
func newEmbedder(cfg *config.Config) embeddings.Embedder {
	e := embeddings.NewFromConfig(cfg, os.Getenv("OPENAI_API_KEY"))
	if e.Name() == embeddings.PlaceholderName {
		fmt.Fprintln(os.Stderr, "warning: no embedding backend configured; semantic ranking is disabled")
	}
	return e
}

func openStore(cfg *config.Config, embedder embeddings.Embedder) (*vectorstore.ChromemStore, error) {
	dir := filepath.Join(cfg.IndexDir, "index")
	store, err := vectorstore.NewChromemStore(dir, embedder)
	if err != nil {
		return nil, fmt.Errorf("opening vector store at %s: %w", dir, err)
	}
	return store, nil
}

func manifestPath(cfg *config.Config) string {
	return filepath.Join(cfg.IndexDir, "manifest.db")
}
