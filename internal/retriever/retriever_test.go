package retriever

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"reflect"
	"strings"
	"testing"

	"advisor/internal/embeddings"
	"advisor/internal/schema"
	"advisor/internal/vectorstore"
)

// fakeStore captures the filter of every search and answers from a
// canned response function.
type fakeStore struct {
	searches []vectorstore.Filter
	respond  func(filter vectorstore.Filter) []schema.Record
	err      error
}

func (s *fakeStore) Add(context.Context, []schema.Record, [][]float32) error { return nil }

func (s *fakeStore) Search(_ context.Context, _ []float32, _ int, filter vectorstore.Filter) ([]schema.Record, error) {
	s.searches = append(s.searches, filter)
	if s.err != nil {
		return nil, s.err
	}
	if s.respond == nil {
		return nil, nil
	}
	return s.respond(filter), nil
}

func (s *fakeStore) Count() int { return 0 }

// wordEmbedder is a deterministic bag-of-words embedder for end-to-end
// tests against the real store.
type wordEmbedder struct {
	dims int
}

func (m *wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *wordEmbedder) Dimensions() int { return m.dims }
func (m *wordEmbedder) Name() string    { return "mock" }

func (m *wordEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[int(h.Sum32())%m.dims]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v * v)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}
	return vec
}

func TestProfileSummary(t *testing.T) {
	p := &Profile{
		Major:            "Electrical & Computer Engineering",
		ClassYear:        "Sophomore",
		Semester:         "Fall 2026",
		CurrentCourses:   []string{"ECE 110", "MATH 212"},
		CompletedCourses: []string{"ECE 101"},
	}
	want := "Major: Electrical & Computer Engineering | Class year: Sophomore | " +
		"Current/target semester: Fall 2026 | Current courses: ECE 110, MATH 212 | " +
		"Completed / prereq courses: ECE 101"
	if got := p.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestProfileSummarySkipsEmptyFields(t *testing.T) {
	p := &Profile{Major: "Computer Science", Semester: "Spring 2027"}
	want := "Major: Computer Science | Current/target semester: Spring 2027"
	if got := p.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}

	var nilProfile *Profile
	if got := nilProfile.Summary(); got != "" {
		t.Errorf("nil profile Summary() = %q, want empty", got)
	}
}

func TestRetrieveComposesMajorAndTypeFilters(t *testing.T) {
	store := &fakeStore{respond: func(vectorstore.Filter) []schema.Record {
		return []schema.Record{{ID: "x", Type: schema.TypePolicy, Text: "t"}}
	}}
	r := New(store, embeddings.Placeholder{})

	profile := &Profile{Major: "Biomedical Engineering"}
	_, err := r.Retrieve(context.Background(), "can I overload next semester?", profile, "overload_registration", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(store.searches) != 1 {
		t.Fatalf("expected 1 search, got %d", len(store.searches))
	}
	want := vectorstore.And{
		Left:  vectorstore.OneOf{Field: "major", Values: []string{"BME", "ALL"}},
		Right: vectorstore.OneOf{Field: "type", Values: []string{"policy", "handbook_requirement", "other"}},
	}
	if !reflect.DeepEqual(store.searches[0], want) {
		t.Errorf("filter = %#v, want %#v", store.searches[0], want)
	}
}

func TestRetrieveUnrecognizedMajorImposesNoFilter(t *testing.T) {
	store := &fakeStore{respond: func(vectorstore.Filter) []schema.Record {
		return []schema.Record{{ID: "x", Type: schema.TypeOther, Text: "t"}}
	}}
	r := New(store, embeddings.Placeholder{})

	profile := &Profile{Major: "Undeclared"}
	_, err := r.Retrieve(context.Background(), "what courses should I take?", profile, "", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(store.searches) != 1 {
		t.Fatalf("expected 1 search, got %d", len(store.searches))
	}
	if store.searches[0] != nil {
		t.Errorf("filter = %#v, want nil (search the whole corpus)", store.searches[0])
	}
}

func TestRetrieveExplicitFewshotSuppressesMajor(t *testing.T) {
	store := &fakeStore{respond: func(vectorstore.Filter) []schema.Record {
		return []schema.Record{{ID: "x", Type: schema.TypeFewshotExample, Text: "t"}}
	}}
	r := New(store, embeddings.Placeholder{})

	profile := &Profile{Major: "Electrical & Computer Engineering"}
	_, err := r.Retrieve(context.Background(), "how do I answer this?", profile, "", 3, schema.TypeFewshotExample)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	want := vectorstore.Equals{Field: "type", Value: "fewshot_example"}
	if !reflect.DeepEqual(store.searches[0], want) {
		t.Errorf("filter = %#v, want only the type predicate", store.searches[0])
	}
}

func TestRetrieveUnmappedIntentImposesNoTypeFilter(t *testing.T) {
	store := &fakeStore{respond: func(vectorstore.Filter) []schema.Record {
		return []schema.Record{{ID: "x", Type: schema.TypeOther, Text: "t"}}
	}}
	r := New(store, embeddings.Placeholder{})

	_, err := r.Retrieve(context.Background(), "hello", nil, "smalltalk", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if store.searches[0] != nil {
		t.Errorf("filter = %#v, want nil for an unmapped intent with no profile", store.searches[0])
	}
}

func TestRetrieveFallbackDropsMajorKeepsType(t *testing.T) {
	// First search (major AND type) finds nothing; the retry must keep the
	// type clause and drop only the major term.
	store := &fakeStore{respond: func(filter vectorstore.Filter) []schema.Record {
		if _, isAnd := filter.(vectorstore.And); isAnd {
			return nil
		}
		return []schema.Record{{ID: "y", Type: schema.TypeHandbookRequirement, Text: "t"}}
	}}
	r := New(store, embeddings.Placeholder{})

	profile := &Profile{Major: "Mechanical Engineering"}
	records, err := r.Retrieve(context.Background(), "what are my degree requirements?", profile, "major_requirements", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	if len(store.searches) != 2 {
		t.Fatalf("expected exactly 2 searches (initial + one fallback), got %d", len(store.searches))
	}
	wantFallback := vectorstore.OneOf{Field: "type", Values: []string{"handbook_requirement", "course_description"}}
	if !reflect.DeepEqual(store.searches[1], wantFallback) {
		t.Errorf("fallback filter = %#v, want the retained type clause", store.searches[1])
	}
	if len(records) != 1 {
		t.Errorf("fallback returned %d records, want 1", len(records))
	}
}

func TestRetrieveNoFallbackWithoutMajorFilter(t *testing.T) {
	// Empty result with no major filter applied: no retry.
	store := &fakeStore{}
	r := New(store, embeddings.Placeholder{})

	records, err := r.Retrieve(context.Background(), "anything", nil, "", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(store.searches) != 1 {
		t.Errorf("expected 1 search, got %d", len(store.searches))
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestRetrievePropagatesStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("store offline")}
	r := New(store, embeddings.Placeholder{})

	if _, err := r.Retrieve(context.Background(), "anything", nil, "", 5, ""); err == nil {
		t.Error("expected store failure to propagate")
	}
}

// End-to-end against the real store: an ECE record and an ALL record are
// both eligible for a student whose major normalizes to ECE.
func TestRetrieveEndToEnd(t *testing.T) {
	embedder := &wordEmbedder{dims: 64}
	store, err := vectorstore.NewChromemStore(t.TempDir(), embedder)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}

	records := []schema.Record{
		{
			ID:    "courses.csv:0",
			Major: schema.MajorECE,
			Type:  schema.TypeCourseDescription,
			Text:  "Signal processing builds on linear systems and transforms.",
		},
		{
			ID:    "handbook.pdf:chunk-0",
			Major: schema.MajorAll,
			Type:  schema.TypeHandbookRequirement,
			Text:  "Every student completes a design capstone in senior year.",
		},
		{
			ID:    "cs_courses.csv:0",
			Major: schema.MajorCS,
			Type:  schema.TypeCourseDescription,
			Text:  "Operating systems covers scheduling and memory management.",
		},
	}
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Text
	}
	vectors, err := embedder.Embed(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Add(context.Background(), records, vectors); err != nil {
		t.Fatalf("Add: %v", err)
	}

	r := New(store, embedder)
	profile := &Profile{Major: "Electrical & Computer Engineering"}
	got, err := r.Retrieve(context.Background(), "signal processing and capstone requirements", profile, "", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}

	ids := make(map[string]bool)
	for _, rec := range got {
		ids[rec.ID] = true
	}
	if !ids["courses.csv:0"] || !ids["handbook.pdf:chunk-0"] {
		t.Errorf("expected the ECE and ALL records, got %v", ids)
	}
	if ids["cs_courses.csv:0"] {
		t.Error("CS record should be excluded by the major filter")
	}
}

// Fallback law: when no record matches the student's major, retrying
// without the major term returns at least as much as the (empty)
// filtered search.
func TestRetrieveFallbackEndToEnd(t *testing.T) {
	embedder := &wordEmbedder{dims: 64}
	store, err := vectorstore.NewChromemStore(t.TempDir(), embedder)
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}

	records := []schema.Record{{
		ID:    "cs_courses.csv:0",
		Major: schema.MajorCS,
		Type:  schema.TypeCourseDescription,
		Text:  "Databases covers relational algebra and transactions.",
	}}
	vectors, err := embedder.Embed(context.Background(), []string{records[0].Text})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Add(context.Background(), records, vectors); err != nil {
		t.Fatalf("Add: %v", err)
	}

	r := New(store, embedder)
	profile := &Profile{Major: "Biomedical Engineering"}
	got, err := r.Retrieve(context.Background(), "database transactions", profile, "", 5, "")
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(got) != 1 || got[0].ID != "cs_courses.csv:0" {
		t.Errorf("fallback should surface the only eligible record, got %+v", got)
	}
}
