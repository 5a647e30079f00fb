package ingest

import (
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"advisor/internal/schema"
)

// exampleMarker is the anchor phrase beginning each worked example in the
// few-shot PDF.
const exampleMarker = "Base Information"

// IngestPDF extracts text from a paginated document and splits it into
// records. Unreadable pages are skipped; a document yielding no text at
// all produces zero records without error.
func IngestPDF(path string, chunkWords int) ([]schema.Record, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	filename := filepath.Base(path)
	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := extractPage(reader, i)
		if err != nil {
			log.Printf("skipping unreadable page %d of %s: %v", i, filename, err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}

	return RecordsFromPages(filename, pages, chunkWords), nil
}

// extractPage pulls plain text from one page. The pdf library panics on
// some malformed content streams, so the panic is converted to a skip.
func extractPage(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", pageNum)
	}
	return page.GetPlainText(nil)
}

// RecordsFromPages turns per-page text into records.
//
// Few-shot example files (name contains "fewshot" or "few_shot") split on
// the recurring anchor phrase beginning each example; each non-empty
// segment becomes one fewshot_example record, major ALL. Everything else
// splits into fixed word-count windows of type handbook_requirement with
// the major inferred from the file name.
func RecordsFromPages(filename string, pages []string, chunkWords int) []schema.Record {
	fullText := strings.TrimSpace(strings.Join(pages, "\n\n"))
	if fullText == "" {
		return nil
	}

	lower := strings.ToLower(filename)
	if strings.Contains(lower, "fewshot") || strings.Contains(lower, "few_shot") {
		return fewshotRecords(filename, fullText)
	}
	return handbookRecords(filename, fullText, chunkWords)
}

func fewshotRecords(filename, fullText string) []schema.Record {
	var records []schema.Record
	for idx, example := range splitExamples(fullText) {
		records = append(records, schema.Record{
			ID:    fmt.Sprintf("%s:example-%d", filename, idx),
			Major: schema.MajorAll,
			Type:  schema.TypeFewshotExample,
			Title: fmt.Sprintf("%s example %d", filename, idx+1),
			Text:  example,
			Metadata: map[string]string{
				"source_file":   filename,
				"example_index": strconv.Itoa(idx),
			},
		})
	}
	return records
}

// splitExamples cuts the text at each occurrence of the anchor phrase.
// Text before the first anchor is kept as its own segment when non-empty.
func splitExamples(text string) []string {
	parts := strings.Split(text, exampleMarker)
	var examples []string
	if lead := strings.TrimSpace(parts[0]); lead != "" {
		examples = append(examples, lead)
	}
	for _, part := range parts[1:] {
		examples = append(examples, strings.TrimSpace(exampleMarker+part))
	}
	return examples
}

func handbookRecords(filename, fullText string, chunkWords int) []schema.Record {
	major := majorFromFilename(filename)

	var records []schema.Record
	for idx, chunk := range ChunkWords(fullText, chunkWords) {
		records = append(records, schema.Record{
			ID:    fmt.Sprintf("%s:chunk-%d", filename, idx),
			Major: major,
			Type:  schema.TypeHandbookRequirement,
			Title: fmt.Sprintf("%s section %d", filename, idx+1),
			Text:  chunk,
			Metadata: map[string]string{
				"source_file": filename,
				"chunk_index": strconv.Itoa(idx),
			},
		})
	}
	return records
}

// majorFromFilename infers a handbook's major from file-name substrings,
// defaulting to ALL for documents that apply to every program.
func majorFromFilename(filename string) schema.Major {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "bme"):
		return schema.MajorBME
	case strings.Contains(lower, "ece"):
		return schema.MajorECE
	case strings.Contains(lower, "me_") || strings.Contains(lower, "_me") || strings.Contains(lower, "mechanical"):
		return schema.MajorME
	case strings.Contains(lower, "cee") || strings.Contains(lower, "civil") || strings.Contains(lower, "environmental"):
		return schema.MajorCEEEnv
	default:
		return schema.MajorAll
	}
}
