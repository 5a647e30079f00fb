// Package vectorstore persists records with their embedding vectors and
// answers nearest-neighbor queries under metadata predicates.
package vectorstore

import (
	"context"

	"advisor/internal/schema"
)

// Store is the persistence surface the retriever depends on.
type Store interface {
	// Add upserts records with their vectors, keyed by record id.
	// len(records) must equal len(vectors).
	Add(ctx context.Context, records []schema.Record, vectors [][]float32) error

	// Search returns at most k records ranked by cosine similarity to the
	// query vector, best match first, restricted to records satisfying
	// the filter. A nil filter searches the full collection.
	Search(ctx context.Context, query []float32, k int, filter Filter) ([]schema.Record, error)

	// Count reports how many records the collection holds.
	Count() int
}

// Filter is a boolean predicate over record metadata. The language is
// deliberately small: exact match, set membership, and conjunction.
type Filter interface {
	filter()
}

// Equals matches records whose metadata field equals the given value.
type Equals struct {
	Field string
	Value string
}

// OneOf matches records whose metadata field equals any of the values.
// An empty value set matches nothing.
type OneOf struct {
	Field  string
	Values []string
}

// And matches records satisfying both sub-predicates.
type And struct {
	Left  Filter
	Right Filter
}

func (Equals) filter() {}
func (OneOf) filter()  {}
func (And) filter()    {}
