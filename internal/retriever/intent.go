package retriever

import "advisor/internal/schema"

// intentTypeSets biases retrieval toward record types relevant to a
// classified question intent. Intents absent from the table impose no
// type filter.
var intentTypeSets = map[string][]schema.RecordType{
	"study_abroad_transfer": {schema.TypePolicy, schema.TypeHandbookRequirement, schema.TypeOther},
	"overload_registration": {schema.TypePolicy, schema.TypeHandbookRequirement, schema.TypeOther},

	"major_requirements":       {schema.TypeHandbookRequirement, schema.TypeCourseDescription},
	"prerequisites_sequencing": {schema.TypeHandbookRequirement, schema.TypeCourseDescription},
}
