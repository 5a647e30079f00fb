package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"advisor/internal/ingest"
	"advisor/internal/manifest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the context index from the configured corpus",
	Long: `Reads course CSVs and handbook PDFs from the context directory,
chunks and embeds them, and writes the persistent vector index. Run this
once per corpus update, before serving questions.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder := newEmbedder(cfg)
	store, err := openStore(cfg, embedder)
	if err != nil {
		return err
	}

	pipeline := &ingest.Pipeline{
		ContextDir: cfg.ContextDir,
		Include:    cfg.Include,
		ChunkWords: cfg.ChunkWords,
		Embedder:   embedder,
		Store:      store,
		Progress:   true,
	}

	started := time.Now()
	fmt.Printf("Ingesting context documents from %s...\n", cfg.ContextDir)
	summary, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	ledger, err := manifest.Open(manifestPath(cfg))
	if err != nil {
		return err
	}
	defer ledger.Close()

	run := manifest.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Embedder:   summary.Embedder,
		Records:    summary.Records,
	}
	for _, f := range summary.Files {
		run.Files = append(run.Files, manifest.FileCount{SourceFile: f.SourceFile, Records: f.Records})
	}
	if _, err := ledger.RecordRun(run); err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}

	for _, f := range summary.Files {
		fmt.Printf("  %-40s %d records\n", f.SourceFile, f.Records)
	}
	fmt.Printf("Ingestion complete: %d records indexed with %s (index now holds %d).\n",
		summary.Records, summary.Embedder, store.Count())
	return nil
}
