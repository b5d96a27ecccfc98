package repair

import (
	"context"
	"path/filepath"
	"testing"

	"inksync/internal/config"
	"inksync/internal/content"
	"inksync/internal/match"
	"inksync/internal/store"
	"inksync/internal/taxonomy"
)

func newTestExecutor(t *testing.T, synonyms map[string]string) (*Executor, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	normalizer := taxonomy.New(synonyms, 64)
	return New(s, normalizer, config.Repair{Workers: 2}, nil), s
}

func seedContent(t *testing.T, s *store.Store, title, slug string) int64 {
	t.Helper()
	id, err := s.CreateContent(context.Background(), &store.ContentRow{
		Title:       title,
		Slug:        slug,
		ContentType: "weekly",
	})
	if err != nil {
		t.Fatalf("CreateContent: %v", err)
	}
	return id
}

func pairFor(t *testing.T, s *store.Store, rowID int64, file content.Record) match.Pair {
	t.Helper()
	row, err := s.GetContentByID(context.Background(), rowID)
	if err != nil || row == nil {
		t.Fatalf("GetContentByID(%d): %v", rowID, err)
	}
	return match.Pair{File: &file, Row: row, Strategy: match.StrategyExactTitle, Score: 1.0}
}

func runOnce(t *testing.T, e *Executor, s *store.Store, pairs []match.Pair) (Tally, []Failure) {
	t.Helper()
	lookup, err := s.BuildLookup(context.Background(), "")
	if err != nil {
		t.Fatalf("BuildLookup: %v", err)
	}
	tally, failures, err := e.Run(context.Background(), pairs, lookup)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return tally, failures
}

func TestRunCreatesTagsAndRelinks(t *testing.T) {
	e, s := newTestExecutor(t, nil)
	rowID := seedContent(t, s, "Issue 1", "issue-1")

	pairs := []match.Pair{pairFor(t, s, rowID, content.Record{
		Path:  "2024-05/001.issue-1.md",
		Title: "Issue 1",
		Tags:  []string{"Go", "Docker"},
	})}

	tally, failures := runOnce(t, e, s, pairs)
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	if tally.TagsCreated != 2 || tally.ItemsRelinked != 1 {
		t.Fatalf("tally = %+v", tally)
	}

	goTag, err := s.GetTagBySlug(context.Background(), "go")
	if err != nil || goTag == nil {
		t.Fatalf("go tag missing: %v", err)
	}
	if goTag.UsageCount != 1 {
		t.Fatalf("usage_count = %d, want 1", goTag.UsageCount)
	}

	ids, err := s.TagsForContent(context.Background(), rowID)
	if err != nil {
		t.Fatalf("TagsForContent: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 associations, got %v", ids)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	e, s := newTestExecutor(t, map[string]string{"K8s": "Kubernetes"})
	rowID := seedContent(t, s, "Issue 1", "issue-1")

	pairs := []match.Pair{pairFor(t, s, rowID, content.Record{
		Path:     "2024-05/001.issue-1.md",
		Title:    "Issue 1",
		Tags:     []string{"K8s", "Go"},
		Category: "News",
		Source:   "https://example.com/1",
	})}

	first, failures := runOnce(t, e, s, pairs)
	if len(failures) != 0 {
		t.Fatalf("first run failures: %+v", failures)
	}
	if first.TagsCreated == 0 || first.ItemsRelinked != 1 {
		t.Fatalf("first tally = %+v", first)
	}

	// The pair's row snapshot is stale after the first run; rebuild it so the
	// second run sees repaired state.
	pairs = []match.Pair{pairFor(t, s, rowID, *pairs[0].File)}
	second, failures := runOnce(t, e, s, pairs)
	if len(failures) != 0 {
		t.Fatalf("second run failures: %+v", failures)
	}
	if second != (Tally{}) {
		t.Fatalf("second run should be a no-op, tally = %+v", second)
	}
}

func TestRunMergesSynonymTags(t *testing.T) {
	e, s := newTestExecutor(t, map[string]string{"K8s": "Kubernetes"})
	ctx := context.Background()

	source, err := s.CreateTag(ctx, "K8s", "k8s")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	target, err := s.CreateTag(ctx, "Kubernetes", "kubernetes")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	rowID := seedContent(t, s, "Issue 1", "issue-1")
	if err := s.ReplaceAssociations(ctx, rowID, []int64{source.ID}); err != nil {
		t.Fatalf("link: %v", err)
	}

	tally, failures := runOnce(t, e, s, nil)
	if len(failures) != 0 {
		t.Fatalf("failures: %+v", failures)
	}
	if tally.TagsMerged != 1 {
		t.Fatalf("tally = %+v", tally)
	}

	if got, err := s.GetTagBySlug(ctx, "k8s"); err != nil || got != nil {
		t.Fatalf("source tag should be gone: %+v %v", got, err)
	}
	ids, err := s.TagsForContent(ctx, rowID)
	if err != nil {
		t.Fatalf("TagsForContent: %v", err)
	}
	if len(ids) != 1 || ids[0] != target.ID {
		t.Fatalf("associations = %v, want [%d]", ids, target.ID)
	}
}

func TestRunNeverMergesBySimilarityAlone(t *testing.T) {
	e, s := newTestExecutor(t, nil)
	ctx := context.Background()

	if _, err := s.CreateTag(ctx, "kubernetes", "kubernetes"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := s.CreateTag(ctx, "kubernetes2", "kubernetes2"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	tally, _ := runOnce(t, e, s, nil)
	if tally.TagsMerged != 0 {
		t.Fatalf("similar names must not merge without a synonym entry: %+v", tally)
	}
	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected both tags to survive, got %d", len(tags))
	}
}

func TestRunSyncsSourceAndCategory(t *testing.T) {
	e, s := newTestExecutor(t, nil)
	ctx := context.Background()
	rowID := seedContent(t, s, "Issue 1", "issue-1")

	pairs := []match.Pair{pairFor(t, s, rowID, content.Record{
		Path:     "2024-05/001.issue-1.md",
		Title:    "Issue 1",
		Source:   "https://example.com/post",
		Category: "Open Source",
	})}

	tally, failures := runOnce(t, e, s, pairs)
	if len(failures) != 0 {
		t.Fatalf("failures: %+v", failures)
	}
	if tally.CategoriesCreated != 1 || tally.FieldsSynced != 2 {
		t.Fatalf("tally = %+v", tally)
	}

	row, err := s.GetContentByID(ctx, rowID)
	if err != nil {
		t.Fatalf("GetContentByID: %v", err)
	}
	if row.Source != "https://example.com/post" {
		t.Fatalf("source = %q", row.Source)
	}
	if row.CategoryID == nil {
		t.Fatal("category not linked")
	}
	category, err := s.GetCategoryBySlug(ctx, "open-source")
	if err != nil || category == nil {
		t.Fatalf("category missing: %v", err)
	}
	if *row.CategoryID != category.ID {
		t.Fatalf("category_id = %d, want %d", *row.CategoryID, category.ID)
	}
}

func TestRunIsolatesItemFailures(t *testing.T) {
	e, s := newTestExecutor(t, nil)
	goodID := seedContent(t, s, "Good", "good")

	good := pairFor(t, s, goodID, content.Record{
		Path:  "2024-05/001.good.md",
		Title: "Good",
		Tags:  []string{"Go"},
	})
	// A row id that no longer exists makes the relink violate the foreign
	// key; the failure must not stop the good item.
	bad := match.Pair{
		File: &content.Record{Path: "2024-05/002.bad.md", Title: "Bad", Tags: []string{"Rust"}},
		Row:  &store.ContentRow{ID: 9999, Title: "Bad"},
	}

	tally, failures := runOnce(t, e, s, []match.Pair{bad, good})
	if tally.ItemsFailed != 1 || len(failures) != 1 {
		t.Fatalf("tally = %+v, failures = %+v", tally, failures)
	}
	if failures[0].Path != "2024-05/002.bad.md" {
		t.Fatalf("failure path = %q", failures[0].Path)
	}

	ids, err := s.TagsForContent(context.Background(), goodID)
	if err != nil {
		t.Fatalf("TagsForContent: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("good item should still be repaired: %v", ids)
	}
}

func TestCreateTagRetriesDisambiguatedSlug(t *testing.T) {
	e, s := newTestExecutor(t, nil)
	ctx := context.Background()

	// Occupy the canonical slug with a different name, then drop it from the
	// cache so the executor walks the conflict path.
	if _, err := s.CreateTag(ctx, "Existing", "go"); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	tag, created, err := e.createTagWithRetry(ctx, "Go", "go")
	if err != nil {
		t.Fatalf("createTagWithRetry: %v", err)
	}
	if created {
		t.Fatal("conflict with an existing slug should reuse, not create")
	}
	if tag == nil || tag.Name != "Existing" {
		t.Fatalf("expected the existing tag to serve, got %+v", tag)
	}
}
