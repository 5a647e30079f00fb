// Package retriever translates a question and an optional student profile
// into a filtered similarity search, with a one-shot fallback when the
// major filter is too strict.
package retriever

import (
	"context"
	"fmt"

	"advisor/internal/embeddings"
	"advisor/internal/schema"
	"advisor/internal/vectorstore"
)

// DefaultK is the number of records retrieved when the caller passes
// k <= 0.
const DefaultK = 6

// Retriever composes metadata filters from profile and intent, embeds the
// augmented question, and searches the store. Construct one per process
// and pass it by reference; both collaborators are shared, read-mostly
// resources.
type Retriever struct {
	store    vectorstore.Store
	embedder embeddings.Embedder
}

func New(store vectorstore.Store, embedder embeddings.Embedder) *Retriever {
	return &Retriever{store: store, embedder: embedder}
}

// Retrieve returns up to k records relevant to the question, best match
// first, each carrying its text and full metadata for provenance display.
//
// With a profile major that normalizes, the search is biased to records
// tagged with that major or ALL — unless the caller explicitly asks for
// few-shot examples, which are never major-filtered. An explicit
// typeFilter wins over the intent-derived type set. If the major-filtered
// search comes back empty, the search is retried exactly once with the
// major term removed (the type term, if any, is kept) so a mismatched
// label can never silently produce zero context.
func (r *Retriever) Retrieve(ctx context.Context, question string, profile *Profile, intent string, k int, typeFilter schema.RecordType) ([]schema.Record, error) {
	if k <= 0 {
		k = DefaultK
	}

	majorFilter := r.majorFilter(profile, typeFilter)
	typeClause := r.typeFilter(intent, typeFilter)

	var filter vectorstore.Filter
	switch {
	case majorFilter != nil && typeClause != nil:
		filter = vectorstore.And{Left: majorFilter, Right: typeClause}
	case majorFilter != nil:
		filter = majorFilter
	case typeClause != nil:
		filter = typeClause
	}

	queryText := question
	if summary := profile.Summary(); summary != "" {
		queryText = summary + "\n\nQuestion: " + question
	}

	vec, err := embeddings.EmbedQuery(ctx, r.embedder, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	records, err := r.store.Search(ctx, vec, k, filter)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	// Over-strict major filter: retry once without the major term.
	if len(records) == 0 && majorFilter != nil {
		records, err = r.store.Search(ctx, vec, k, typeClause)
		if err != nil {
			return nil, fmt.Errorf("fallback search: %w", err)
		}
	}

	return records, nil
}

// majorFilter builds the "student's major or ALL" predicate. An
// unrecognized major yields no filter at all, and few-shot retrieval is
// never constrained by major.
func (r *Retriever) majorFilter(profile *Profile, typeFilter schema.RecordType) vectorstore.Filter {
	if profile == nil || typeFilter == schema.TypeFewshotExample {
		return nil
	}
	major, ok := schema.NormalizeMajor(profile.Major)
	if !ok {
		return nil
	}
	return vectorstore.OneOf{
		Field:  "major",
		Values: []string{string(major), string(schema.MajorAll)},
	}
}

// typeFilter prefers an explicit caller filter, then the intent table.
func (r *Retriever) typeFilter(intent string, typeFilter schema.RecordType) vectorstore.Filter {
	if typeFilter != "" {
		return vectorstore.Equals{Field: "type", Value: string(typeFilter)}
	}
	types, ok := intentTypeSets[intent]
	if !ok {
		return nil
	}
	values := make([]string, len(types))
	for i, t := range types {
		values[i] = string(t)
	}
	return vectorstore.OneOf{Field: "type", Values: values}
}
