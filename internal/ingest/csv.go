package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"advisor/internal/schema"
)

// Candidate columns per record field, in priority order. The first
// non-empty cell wins.
var (
	subjectColumns = []string{"Subject code", "Subject", "Major"}
	catalogColumns = []string{"Catalog Number", "Number"}
	titleColumns   = []string{"Course Title", "Title"}
	bodyColumns    = []string{"Course Description", "Description", "Requirements", "Text"}
)

// IngestCSV reads a tabular source and returns one record per row that
// carries any text. Malformed rows are logged and skipped; rows whose
// body and title are both empty are dropped.
func IngestCSV(path string) ([]schema.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	// Spreadsheet exports often carry a UTF-8 BOM on the first cell.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	filename := filepath.Base(path)
	var records []schema.Record
	for rowIndex := 0; ; rowIndex++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("skipping malformed row %d in %s: %v", rowIndex, filename, err)
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(cells) {
				row[col] = strings.TrimSpace(cells[i])
			}
		}

		if rec, ok := RecordFromRow(filename, rowIndex, row); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// RecordFromRow maps one header-keyed row to a record. It returns false
// when the row yields no indexable text.
func RecordFromRow(filename string, rowIndex int, row map[string]string) (schema.Record, bool) {
	pick := func(columns []string) string {
		for _, col := range columns {
			if v := row[col]; v != "" {
				return v
			}
		}
		return ""
	}

	subject := pick(subjectColumns)
	major, ok := schema.NormalizeMajor(subject)
	if !ok {
		major = schema.MajorAll
	}

	var code string
	if catalog := pick(catalogColumns); subject != "" && catalog != "" {
		code = subject + " " + catalog
	}

	title := pick(titleColumns)

	var bodyParts []string
	for _, col := range bodyColumns {
		if v := row[col]; v != "" {
			bodyParts = append(bodyParts, v)
		}
	}
	text := strings.TrimSpace(strings.Join(bodyParts, "\n\n"))
	if text == "" {
		// At least index the title.
		text = title
	}
	if text == "" {
		return schema.Record{}, false
	}

	return schema.Record{
		ID:    fmt.Sprintf("%s:%d", filename, rowIndex),
		Major: major,
		Type:  typeFromFilename(filename),
		Code:  code,
		Title: title,
		Text:  text,
		Metadata: map[string]string{
			"source_file": filename,
			"row_index":   strconv.Itoa(rowIndex),
		},
	}, true
}

// typeFromFilename infers the record type from source file naming. The
// name substrings are a deliberate convention of the context corpus.
func typeFromFilename(filename string) schema.RecordType {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "class") || strings.Contains(lower, "course"):
		return schema.TypeCourseDescription
	case strings.Contains(lower, "handbook") || strings.Contains(lower, "requirement"):
		return schema.TypeHandbookRequirement
	default:
		return schema.TypeOther
	}
}
