// Package embeddings abstracts text-to-vector conversion over a remote
// API-backed model, a local model, and a degraded placeholder.
package embeddings

import (
	"context"

	chromem "github.com/philippgille/chromem-go"
)

// Embedder converts texts into fixed-length float vectors. Vector length
// is constant for one embedder instance; documents embedded in a batch at
// ingestion time are comparable to queries embedded singly at request time.
type Embedder interface {
	// Embed generates embeddings for one or more texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the length of the vectors this embedder produces.
	Dimensions() int

	// Name identifies the backing model, e.g. for ingest manifests.
	Name() string
}

// EmbedQuery embeds a single query text. It is defined as Embed on a
// one-element input so query vectors go through the exact same model and
// preprocessing as batched document vectors.
func EmbedQuery(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, nil
	}
	return vecs[0], nil
}

// ToChromemFunc adapts an Embedder to chromem-go's single-text signature.
func ToChromemFunc(e Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return EmbedQuery(ctx, e, text)
	}
}
