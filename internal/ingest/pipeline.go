// Package ingest turns tabular and paginated document sources into typed,
// chunked records and loads them into the vector store.
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"

	"advisor/internal/embeddings"
	"advisor/internal/schema"
	"advisor/internal/vectorstore"
)

// embedBatchSize bounds how many records are embedded and written at once.
const embedBatchSize = 64

// Pipeline is the offline batch job that populates the index. It runs
// once per corpus update, before serving traffic.
type Pipeline struct {
	ContextDir string
	Include    []string // glob patterns matched against lower-cased names
	ChunkWords int
	Embedder   embeddings.Embedder
	Store      vectorstore.Store

	// Progress draws a terminal progress bar during embedding.
	Progress bool
}

// FileCount reports how many records one source file contributed.
type FileCount struct {
	SourceFile string
	Records    int
}

// Summary describes one completed ingestion run.
type Summary struct {
	Embedder string
	Records  int
	Files    []FileCount
}

// Run ingests every matching source file: parse, embed, store. A source
// yielding zero records is fine; an unreadable source is logged and
// skipped. Store and embedding failures abort the run.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	files, err := p.matchSources()
	if err != nil {
		return nil, err
	}

	summary := &Summary{Embedder: p.Embedder.Name()}
	var records []schema.Record
	for _, path := range files {
		recs, err := p.ingestFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", filepath.Base(path), err)
			continue
		}
		summary.Files = append(summary.Files, FileCount{
			SourceFile: filepath.Base(path),
			Records:    len(recs),
		})
		records = append(records, recs...)
	}

	if err := p.index(ctx, records); err != nil {
		return nil, err
	}
	summary.Records = len(records)
	return summary, nil
}

func (p *Pipeline) matchSources() ([]string, error) {
	entries, err := os.ReadDir(p.ContextDir)
	if err != nil {
		return nil, fmt.Errorf("reading context dir %s: %w", p.ContextDir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		for _, pattern := range p.Include {
			ok, err := doublestar.Match(pattern, name)
			if err != nil {
				return nil, fmt.Errorf("bad include pattern %q: %w", pattern, err)
			}
			if ok {
				files = append(files, filepath.Join(p.ContextDir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (p *Pipeline) ingestFile(path string) ([]schema.Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return IngestCSV(path)
	case ".pdf":
		return IngestPDF(path, p.ChunkWords)
	default:
		return nil, fmt.Errorf("unsupported source kind %s", filepath.Ext(path))
	}
}

func (p *Pipeline) index(ctx context.Context, records []schema.Record) error {
	if len(records) == 0 {
		return nil
	}

	var bar *progressbar.ProgressBar
	if p.Progress {
		bar = progressbar.Default(int64(len(records)), "embedding")
	}

	for start := 0; start < len(records); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.Text
		}
		vectors, err := p.Embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch at %d: %w", start, err)
		}
		if err := p.Store.Add(ctx, batch, vectors); err != nil {
			return fmt.Errorf("storing batch at %d: %w", start, err)
		}
		if bar != nil {
			bar.Add(len(batch))
		}
	}
	return nil
}
