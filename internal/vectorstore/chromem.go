package vectorstore

import (
	"context"
	"fmt"
	"sort"

	chromem "github.com/philippgille/chromem-go"

	"advisor/internal/embeddings"
	"advisor/internal/schema"
)

const collectionName = "advising"

// ChromemStore implements Store on a directory-backed chromem-go
// collection using cosine similarity.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemStore opens (or creates) the persistent collection under dir.
// The embedder is only consulted for documents added without a vector;
// Add always supplies vectors explicitly.
func NewChromemStore(dir string, embedder embeddings.Embedder) (*ChromemStore, error) {
	db, err := chromem.NewPersistentDB(dir, true)
	if err != nil {
		return nil, fmt.Errorf("open vector db at %s: %w", dir, err)
	}

	col, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{db: db, collection: col}, nil
}

func (s *ChromemStore) Add(ctx context.Context, records []schema.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("record/vector count mismatch: %d records, %d vectors", len(records), len(vectors))
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record %d has no id", i)
		}
		if r.Text == "" {
			return fmt.Errorf("record %q has empty text", r.ID)
		}
		docs[i] = chromem.Document{
			ID:        r.ID,
			Content:   r.Text,
			Embedding: vectors[i],
			Metadata:  flattenRecord(r),
		}
	}

	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query []float32, k int, filter Filter) ([]schema.Record, error) {
	if k <= 0 {
		return nil, nil
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	// chromem-go rejects nResults larger than the collection.
	if k > count {
		k = count
	}

	// chromem's where clause only supports exact-match conjunctions, so a
	// filter with OneOf terms expands into one query per combination and
	// the results merge by id on best similarity.
	type hit struct {
		result chromem.Result
		order  int
	}
	merged := make(map[string]hit)
	next := 0

	for _, where := range whereClauses(filter) {
		results, err := s.collection.QueryEmbedding(ctx, query, k, where, nil)
		if err != nil {
			return nil, fmt.Errorf("vector query: %w", err)
		}
		for _, r := range results {
			prev, seen := merged[r.ID]
			if !seen || r.Similarity > prev.result.Similarity {
				order := next
				if seen {
					order = prev.order
				}
				merged[r.ID] = hit{result: r, order: order}
				next++
			}
		}
	}

	hits := make([]hit, 0, len(merged))
	for _, h := range merged {
		hits = append(hits, h)
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].result.Similarity != hits[j].result.Similarity {
			return hits[i].result.Similarity > hits[j].result.Similarity
		}
		return hits[i].order < hits[j].order
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	records := make([]schema.Record, len(hits))
	for i, h := range hits {
		records[i] = recordFromResult(h.result)
	}
	return records, nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}

// whereClauses expands a filter into a disjunction of chromem-go
// exact-match clauses. A nil filter yields a single unrestricted clause;
// an unsatisfiable filter (OneOf over an empty set) yields none.
func whereClauses(f Filter) []map[string]string {
	if f == nil {
		return []map[string]string{nil}
	}
	switch f := f.(type) {
	case Equals:
		return []map[string]string{{f.Field: f.Value}}
	case OneOf:
		clauses := make([]map[string]string, 0, len(f.Values))
		for _, v := range f.Values {
			clauses = append(clauses, map[string]string{f.Field: v})
		}
		return clauses
	case And:
		var clauses []map[string]string
		for _, left := range whereClauses(f.Left) {
			for _, right := range whereClauses(f.Right) {
				combined := make(map[string]string, len(left)+len(right))
				for k, v := range left {
					combined[k] = v
				}
				for k, v := range right {
					combined[k] = v
				}
				clauses = append(clauses, combined)
			}
		}
		return clauses
	default:
		return nil
	}
}

// flattenRecord folds the typed record fields and the open metadata map
// into chromem's flat string metadata. Empty values are dropped so they
// never match a filter.
func flattenRecord(r schema.Record) map[string]string {
	md := make(map[string]string, len(r.Metadata)+4)
	if r.Major != "" {
		md["major"] = string(r.Major)
	}
	if r.Type != "" {
		md["type"] = string(r.Type)
	}
	if r.Code != "" {
		md["code"] = r.Code
	}
	if r.Title != "" {
		md["title"] = r.Title
	}
	for k, v := range r.Metadata {
		if v != "" {
			md[k] = v
		}
	}
	return md
}

// recordFromResult rebuilds a record from a query result. A missing major
// stays absent; a missing type becomes the unknown sentinel.
func recordFromResult(res chromem.Result) schema.Record {
	r := schema.Record{
		ID:       res.ID,
		Text:     res.Content,
		Major:    schema.Major(res.Metadata["major"]),
		Type:     schema.RecordType(res.Metadata["type"]),
		Code:     res.Metadata["code"],
		Title:    res.Metadata["title"],
		Metadata: make(map[string]string),
	}
	if r.Type == "" {
		r.Type = schema.TypeUnknown
	}
	for k, v := range res.Metadata {
		switch k {
		case "major", "type", "code", "title":
		default:
			r.Metadata[k] = v
		}
	}
	return r
}
