package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"advisor/internal/retriever"
	"advisor/internal/schema"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Retrieve the context most relevant to a question",
	Long: `Searches the index for the excerpts most relevant to a student
question, optionally biased by a student profile. Prints the retrieved
chunks with their provenance; answering is left to the caller.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("major", "", "student's major (free text, e.g. \"Biomedical Engineering\")")
	askCmd.Flags().String("year", "", "class year")
	askCmd.Flags().String("semester", "", "current or target semester")
	askCmd.Flags().StringSlice("current", nil, "current courses")
	askCmd.Flags().StringSlice("completed", nil, "completed courses")
	askCmd.Flags().String("intent", "", "classified question intent")
	askCmd.Flags().String("type", "", "explicit record type filter")
	askCmd.Flags().Int("limit", 0, "maximum number of records (default from config)")
	askCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder := newEmbedder(cfg)
	store, err := openStore(cfg, embedder)
	if err != nil {
		return err
	}
	if store.Count() == 0 {
		fmt.Println("The index is empty. Run `advisor ingest` first.")
		return nil
	}

	profile := profileFromFlags(cmd)
	intent, _ := cmd.Flags().GetString("intent")
	typeFilter, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.TopK
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")

	r := retriever.New(store, embedder)
	records, err := r.Retrieve(ctx, question, profile, intent, limit, schema.RecordType(typeFilter))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No matching context found.")
		return nil
	}

	if jsonOutput {
		return printRecordsJSON(records)
	}
	printRecords(records)
	return nil
}

func profileFromFlags(cmd *cobra.Command) *retriever.Profile {
	major, _ := cmd.Flags().GetString("major")
	year, _ := cmd.Flags().GetString("year")
	semester, _ := cmd.Flags().GetString("semester")
	current, _ := cmd.Flags().GetStringSlice("current")
	completed, _ := cmd.Flags().GetStringSlice("completed")

	if major == "" && year == "" && semester == "" && len(current) == 0 && len(completed) == 0 {
		return nil
	}
	return &retriever.Profile{
		Major:            major,
		ClassYear:        year,
		Semester:         semester,
		CurrentCourses:   current,
		CompletedCourses: completed,
	}
}

type recordJSON struct {
	Rank     int               `json:"rank"`
	ID       string            `json:"id"`
	Major    string            `json:"major,omitempty"`
	Type     string            `json:"type"`
	Code     string            `json:"code,omitempty"`
	Title    string            `json:"title,omitempty"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func printRecordsJSON(records []schema.Record) error {
	out := make([]recordJSON, len(records))
	for i, r := range records {
		out[i] = recordJSON{
			Rank:     i + 1,
			ID:       r.ID,
			Major:    string(r.Major),
			Type:     string(r.Type),
			Code:     r.Code,
			Title:    r.Title,
			Text:     r.Text,
			Metadata: r.Metadata,
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printRecords(records []schema.Record) {
	fmt.Printf("Found %d record(s):\n\n", len(records))
	for i, r := range records {
		header := string(r.Type)
		if r.Code != "" {
			header += " " + r.Code
		}
		if r.Major != "" {
			header += fmt.Sprintf(" [%s]", r.Major)
		}
		fmt.Printf("  %d. %s\n", i+1, header)
		if r.Title != "" {
			fmt.Printf("     %s\n", r.Title)
		}
		if src := r.Metadata["source_file"]; src != "" {
			fmt.Printf("     Source: %s\n", src)
		}
		fmt.Printf("     %s\n\n", truncate(r.Text, 200))
	}
}

// truncate shortens s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
