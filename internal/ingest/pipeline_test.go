package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"advisor/internal/embeddings"
	"advisor/internal/schema"
	"advisor/internal/vectorstore"
)

// memStore records adds for pipeline assertions.
type memStore struct {
	records map[string]schema.Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]schema.Record)}
}

func (s *memStore) Add(_ context.Context, records []schema.Record, vectors [][]float32) error {
	if len(records) != len(vectors) {
		return fmt.Errorf("count mismatch")
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

func (s *memStore) Search(context.Context, []float32, int, vectorstore.Filter) ([]schema.Record, error) {
	return nil, nil
}

func (s *memStore) Count() int { return len(s.records) }

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	csvContent := "Subject,Number,Title,Description\n" +
		"ECE,110,Fundamentals,Circuits and signals.\n" +
		"CS,201,Data Structures,Lists and trees.\n"
	if err := os.WriteFile(filepath.Join(dir, "spring_courses.csv"), []byte(csvContent), 0644); err != nil {
		t.Fatal(err)
	}
	// Not matched by the include patterns.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	store := newMemStore()
	p := &Pipeline{
		ContextDir: dir,
		Include:    []string{"*.csv", "*.pdf"},
		ChunkWords: 400,
		Embedder:   embeddings.Placeholder{},
		Store:      store,
	}

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Records != 2 {
		t.Errorf("summary.Records = %d, want 2", summary.Records)
	}
	if summary.Embedder != embeddings.PlaceholderName {
		t.Errorf("summary.Embedder = %q", summary.Embedder)
	}
	if len(summary.Files) != 1 || summary.Files[0].SourceFile != "spring_courses.csv" || summary.Files[0].Records != 2 {
		t.Errorf("summary.Files = %+v", summary.Files)
	}
	if store.Count() != 2 {
		t.Errorf("store holds %d records, want 2", store.Count())
	}
	if _, ok := store.records["spring_courses.csv:0"]; !ok {
		t.Error("expected record spring_courses.csv:0 in the store")
	}
}

func TestPipelineRunEmptyDir(t *testing.T) {
	store := newMemStore()
	p := &Pipeline{
		ContextDir: t.TempDir(),
		Include:    []string{"*.csv", "*.pdf"},
		ChunkWords: 400,
		Embedder:   embeddings.Placeholder{},
		Store:      store,
	}

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run on empty dir should not fail: %v", err)
	}
	if summary.Records != 0 || store.Count() != 0 {
		t.Errorf("expected an empty run, got %+v", summary)
	}
}

func TestPipelineRunRerunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	csvContent := "Subject,Number,Title,Description\nECE,110,Fundamentals,Circuits.\n"
	if err := os.WriteFile(filepath.Join(dir, "classes.csv"), []byte(csvContent), 0644); err != nil {
		t.Fatal(err)
	}

	store := newMemStore()
	p := &Pipeline{
		ContextDir: dir,
		Include:    []string{"*.csv"},
		ChunkWords: 400,
		Embedder:   embeddings.Placeholder{},
		Store:      store,
	}

	for i := 0; i < 2; i++ {
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}
	// Deterministic ids make the second run an upsert, not a duplicate.
	if store.Count() != 1 {
		t.Errorf("store holds %d records after re-ingestion, want 1", store.Count())
	}
}
