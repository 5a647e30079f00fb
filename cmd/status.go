package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"advisor/internal/manifest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent ingestion run",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := manifestPath(cfg)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("No ingestion has been recorded. Run `advisor ingest` first.")
		return nil
	}

	ledger, err := manifest.Open(path)
	if err != nil {
		return err
	}
	defer ledger.Close()

	run, err := ledger.LatestRun()
	if err != nil {
		return fmt.Errorf("reading manifest: %w", err)
	}
	if run == nil {
		fmt.Println("No ingestion has been recorded. Run `advisor ingest` first.")
		return nil
	}

	fmt.Printf("Last ingest: %s (run %s)\n", run.FinishedAt.Local().Format("2006-01-02 15:04:05"), run.ID)
	fmt.Printf("Embedder:    %s\n", run.Embedder)
	fmt.Printf("Records:     %d\n", run.Records)
	for _, f := range run.Files {
		fmt.Printf("  %-40s %d records\n", f.SourceFile, f.Records)
	}
	return nil
}
