package testsupport

import (
	"context"
	"testing"

	"inksync/internal/config"
	"inksync/internal/store"
)

// MustOpenStore opens the mirror at the config's database path and closes it
// when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg.Paths.DatabasePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// SeedContent inserts a content row and returns its id.
func SeedContent(t testing.TB, s *store.Store, row *store.ContentRow) int64 {
	t.Helper()

	if row.ContentType == "" {
		row.ContentType = "weekly"
	}
	id, err := s.CreateContent(context.Background(), row)
	if err != nil {
		t.Fatalf("seed content %q: %v", row.Title, err)
	}
	return id
}

// SeedTag inserts a tag and links it to the given content rows.
func SeedTag(t testing.TB, s *store.Store, name, slug string, contentIDs ...int64) *store.TagEntity {
	t.Helper()

	ctx := context.Background()
	tag, err := s.CreateTag(ctx, name, slug)
	if err != nil {
		t.Fatalf("seed tag %q: %v", name, err)
	}
	for _, contentID := range contentIDs {
		existing, err := s.TagsForContent(ctx, contentID)
		if err != nil {
			t.Fatalf("read associations for %d: %v", contentID, err)
		}
		if err := s.ReplaceAssociations(ctx, contentID, append(existing, tag.ID)); err != nil {
			t.Fatalf("link tag %q to %d: %v", name, contentID, err)
		}
	}
	return tag
}
