package diagnose

import (
	"testing"
	"time"

	"inksync/internal/config"
	"inksync/internal/content"
	"inksync/internal/match"
	"inksync/internal/store"
	"inksync/internal/taxonomy"
)

func newTestDiagnoser(synonyms map[string]string) *Diagnoser {
	cfg := config.Default()
	for variant, canonical := range synonyms {
		cfg.Taxonomy.Synonyms[variant] = canonical
	}
	normalizer := taxonomy.New(cfg.Taxonomy.Synonyms, cfg.Taxonomy.SlugMaxLength)
	return New(&cfg, normalizer, nil)
}

func emptyLookup() *store.Lookup {
	return &store.Lookup{
		TagsByID:         map[int64]*store.TagEntity{},
		TagsBySlug:       map[string]*store.TagEntity{},
		CategoriesByID:   map[int64]*store.CategoryEntity{},
		CategoriesBySlug: map[string]*store.CategoryEntity{},
		Associations:     map[int64][]int64{},
	}
}

func TestDiagnoseUnmatchedSides(t *testing.T) {
	d := newTestDiagnoser(nil)
	result := match.Result{
		UnmatchedFiles: []*content.Record{{Path: "2024-05/001.orphan.md", Title: "Orphan"}},
		UnmatchedRows:  []*store.ContentRow{{ID: 9, Title: "Ghost"}},
	}

	issues := d.Diagnose(result, emptyLookup(), content.ScanStats{}, DepthBasic)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d: %+v", len(issues), issues)
	}
	// Errors sort before warnings.
	if issues[0].Type != TypeMissingDB || issues[0].Severity != SeverityError {
		t.Fatalf("first issue = %+v", issues[0])
	}
	if issues[1].Type != TypeMissingFile || issues[1].Severity != SeverityWarning {
		t.Fatalf("second issue = %+v", issues[1])
	}
	if issues[1].RowID != 9 {
		t.Fatalf("missing_file should carry the row id: %+v", issues[1])
	}
}

func TestDiagnoseParseFailures(t *testing.T) {
	d := newTestDiagnoser(nil)
	stats := content.ScanStats{
		ParseFailures: []content.ParseFailure{{Path: "bad.md", Err: "missing title"}},
	}

	issues := d.Diagnose(match.Result{}, emptyLookup(), stats, DepthBasic)
	if len(issues) != 1 || issues[0].Type != TypeParseFailure {
		t.Fatalf("issues = %+v", issues)
	}
}

func TestDiagnoseTagMismatch(t *testing.T) {
	d := newTestDiagnoser(nil)
	lookup := emptyLookup()
	lookup.TagsByID[1] = &store.TagEntity{ID: 1, Name: "Go", Slug: "go"}
	lookup.TagsByID[2] = &store.TagEntity{ID: 2, Name: "Legacy", Slug: "legacy"}
	lookup.Associations[10] = []int64{1, 2}

	result := match.Result{Matched: []match.Pair{{
		File: &content.Record{Path: "a.md", Title: "A", Tags: []string{"Go", "Docker"}},
		Row:  &store.ContentRow{ID: 10, Title: "A"},
	}}}

	issues := d.Diagnose(result, lookup, content.ScanStats{}, DepthTags)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
	// File-only tag is an error and sorts first.
	if issues[0].Severity != SeverityError || issues[0].Type != TypeTagMismatch {
		t.Fatalf("first issue = %+v", issues[0])
	}
	if issues[1].Severity != SeverityWarning {
		t.Fatalf("second issue = %+v", issues[1])
	}
}

func TestDiagnoseTagsRespectSynonyms(t *testing.T) {
	d := newTestDiagnoser(map[string]string{"TailwindCSS": "Tailwind CSS"})
	lookup := emptyLookup()
	lookup.TagsByID[1] = &store.TagEntity{ID: 1, Name: "Tailwind CSS", Slug: "tailwind-css"}
	lookup.Associations[10] = []int64{1}

	result := match.Result{Matched: []match.Pair{{
		File: &content.Record{Path: "a.md", Title: "A", Tags: []string{"TailwindCSS"}},
		Row:  &store.ContentRow{ID: 10, Title: "A"},
	}}}

	issues := d.Diagnose(result, lookup, content.ScanStats{}, DepthTags)
	if len(issues) != 0 {
		t.Fatalf("synonym variants should not mismatch: %+v", issues)
	}
}

func TestDiagnoseMetadataDiffs(t *testing.T) {
	d := newTestDiagnoser(nil)
	lookup := emptyLookup()
	categoryID := int64(3)
	lookup.CategoriesByID[categoryID] = &store.CategoryEntity{ID: categoryID, Name: "News", Slug: "news"}

	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	result := match.Result{Matched: []match.Pair{{
		File: &content.Record{
			Path:     "a.md",
			Title:    "A",
			Source:   "https://example.com/new",
			Category: "Tools",
			Date:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Row: &store.ContentRow{
			ID:          10,
			Title:       "A",
			Source:      "https://example.com/old",
			CategoryID:  &categoryID,
			PublishedAt: &published,
		},
	}}}

	issues := d.Diagnose(result, lookup, content.ScanStats{}, DepthFull)
	counts := map[Severity]int{}
	for _, issue := range issues {
		if issue.Type != TypeMetadataDiff {
			t.Fatalf("unexpected issue type: %+v", issue)
		}
		counts[issue.Severity]++
	}
	// Category diff + date drift are warnings, source diff is info.
	if counts[SeverityWarning] != 2 || counts[SeverityInfo] != 1 {
		t.Fatalf("severity counts = %v, issues = %+v", counts, issues)
	}
}

func TestDiagnoseMetadataSkippedAtTagsDepth(t *testing.T) {
	d := newTestDiagnoser(nil)
	result := match.Result{Matched: []match.Pair{{
		File: &content.Record{Path: "a.md", Title: "A", Source: "https://example.com/x"},
		Row:  &store.ContentRow{ID: 10, Title: "A"},
	}}}

	issues := d.Diagnose(result, emptyLookup(), content.ScanStats{}, DepthTags)
	if len(issues) != 0 {
		t.Fatalf("metadata checks should not run at tags depth: %+v", issues)
	}
}

func TestDiagnoseUsageCounts(t *testing.T) {
	d := newTestDiagnoser(nil)
	lookup := emptyLookup()
	lookup.TagsByID[1] = &store.TagEntity{ID: 1, Name: "Go", Slug: "go", UsageCount: 5}
	lookup.TagsByID[2] = &store.TagEntity{ID: 2, Name: "Stale", Slug: "stale", UsageCount: 3}
	lookup.TagsByID[3] = &store.TagEntity{ID: 3, Name: "Fine", Slug: "fine", UsageCount: 1}
	lookup.Associations[10] = []int64{1, 3}

	issues := d.Diagnose(match.Result{}, lookup, content.ScanStats{}, DepthFull)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
	for _, issue := range issues {
		if issue.Type != TypeMetadataDiff {
			t.Fatalf("unexpected type: %+v", issue)
		}
	}
	// Count drift with real associations is a warning; zero-association
	// tags with a nonzero counter are info.
	if issues[0].Severity != SeverityWarning || issues[1].Severity != SeverityInfo {
		t.Fatalf("severities = %q, %q", issues[0].Severity, issues[1].Severity)
	}
}

func TestDiagnoseSimilarTags(t *testing.T) {
	d := newTestDiagnoser(nil)
	lookup := emptyLookup()
	lookup.TagsByID[1] = &store.TagEntity{ID: 1, Name: "kubernetes", Slug: "kubernetes"}
	lookup.TagsByID[2] = &store.TagEntity{ID: 2, Name: "kubernetes2", Slug: "kubernetes2"}

	issues := d.Diagnose(match.Result{}, lookup, content.ScanStats{}, DepthTags)
	if len(issues) != 1 || issues[0].Type != TypeSimilarTag {
		t.Fatalf("issues = %+v", issues)
	}
	if issues[0].Severity != SeverityWarning {
		t.Fatalf("severity = %q", issues[0].Severity)
	}
}

func TestParseDepth(t *testing.T) {
	if depth, err := ParseDepth(""); err != nil || depth != DepthFull {
		t.Fatalf("empty depth: %v %v", depth, err)
	}
	if depth, err := ParseDepth("tags"); err != nil || depth != DepthTags {
		t.Fatalf("tags depth: %v %v", depth, err)
	}
	if _, err := ParseDepth("everything"); err == nil {
		t.Fatal("expected error for unknown depth")
	}
}
