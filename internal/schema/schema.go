// Package schema defines the canonical record type shared by ingestion,
// the vector store, and the retriever, along with major-code normalization.
package schema

import "strings"

// Major is a canonical program code used for metadata filtering.
type Major string

const (
	MajorECE    Major = "ECE"
	MajorBME    Major = "BME"
	MajorME     Major = "ME"
	MajorCEEEnv Major = "CEE_ENV"
	MajorCS     Major = "CS"

	// MajorAll marks content applicable regardless of major.
	MajorAll Major = "ALL"
)

// RecordType classifies a record for filtering. It is not part of identity.
type RecordType string

const (
	TypeCourseDescription   RecordType = "course_description"
	TypeHandbookRequirement RecordType = "handbook_requirement"
	TypePolicy              RecordType = "policy"
	TypeFewshotExample      RecordType = "fewshot_example"
	TypeOther               RecordType = "other"

	// TypeUnknown is the sentinel for records read back from the store
	// without a type field.
	TypeUnknown RecordType = "unknown"
)

// Record is one indexed unit of retrievable text plus typed metadata.
//
// ID is a deterministic function of the source file name and a positional
// index, so re-ingesting the same source yields the same ids. Metadata
// holds auxiliary provenance fields (source file, row/chunk/example index)
// as strings; empty values are dropped before persistence because the
// store's filter language cannot match them.
type Record struct {
	ID       string
	Major    Major // "" means absent, never a guessed default
	Type     RecordType
	Code     string
	Title    string
	Text     string
	Metadata map[string]string
}

// majorNames maps case-normalized major labels to canonical codes. It
// accepts both the canonical codes themselves and the human-readable
// names the profile form uses.
var majorNames = map[string]Major{
	"ECE":     MajorECE,
	"BME":     MajorBME,
	"ME":      MajorME,
	"CEE_ENV": MajorCEEEnv,
	"CS":      MajorCS,
	"ALL":     MajorAll,

	"ELECTRICAL & COMPUTER ENGINEERING":   MajorECE,
	"ELECTRICAL AND COMPUTER ENGINEERING": MajorECE,
	"BIOMEDICAL ENGINEERING":              MajorBME,
	"MECHANICAL ENGINEERING":              MajorME,
	"CIVIL & ENVIRONMENTAL ENGINEERING":   MajorCEEEnv,
	"CIVIL AND ENVIRONMENTAL ENGINEERING": MajorCEEEnv,
	"COMPUTER SCIENCE":                    MajorCS,
}

// NormalizeMajor maps a free-text major label to its canonical code.
// Unrecognized input yields ("", false); callers must treat that as
// "do not filter by major", never as "filter to an empty major".
// Normalization is idempotent: canonical codes map to themselves.
func NormalizeMajor(raw string) (Major, bool) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return "", false
	}
	m, ok := majorNames[key]
	return m, ok
}
