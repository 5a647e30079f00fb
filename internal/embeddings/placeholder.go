package embeddings

import "context"

// PlaceholderName identifies the degraded embedder so callers can warn
// users that semantic ranking is disabled.
const PlaceholderName = "placeholder"

// Placeholder is the degraded variant used when no embedding capability
// can be configured at all. Every input maps to the same length-1 vector,
// which makes similarity search directionless: results come back in the
// store's internal order. This is an explicit degraded mode, not an error.
type Placeholder struct{}

func (Placeholder) Name() string { return PlaceholderName }

func (Placeholder) Dimensions() int { return 1 }

func (Placeholder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1}
	}
	return out, nil
}
