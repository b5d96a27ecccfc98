package content_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"inksync/internal/content"
)

func writeFile(t *testing.T, root, rel, text string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestScanParsesTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "2024-05/001.first.md", "---\ntitle: First\ntags: [a]\n---\nbody\n")
	writeFile(t, root, "2024-06/002.second.md", "---\ntitle: Second\n---\nbody\n")
	writeFile(t, root, "notes.txt", "not content")

	scanner := content.NewScanner(root, nil, nil, nil)
	records, stats, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if stats.FilesFound != 2 || stats.Parsed != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Walk order is lexical, so paths are deterministic.
	if records[0].Path != "2024-05/001.first.md" {
		t.Fatalf("unexpected first path %q", records[0].Path)
	}
}

func TestScanSkipsMalformedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "good.md", "---\ntitle: Good\n---\nbody\n")
	writeFile(t, root, "bad.md", "no frontmatter here")

	scanner := content.NewScanner(root, nil, nil, nil)
	records, stats, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if stats.FilesFound != 2 {
		t.Fatalf("expected 2 files found, got %d", stats.FilesFound)
	}
	if stats.Parsed != stats.FilesFound-len(stats.ParseFailures) {
		t.Fatalf("parsed count %d inconsistent with found %d minus failures %d",
			stats.Parsed, stats.FilesFound, len(stats.ParseFailures))
	}
	if len(stats.ParseFailures) != 1 || stats.ParseFailures[0].Path != "bad.md" {
		t.Fatalf("unexpected failures: %+v", stats.ParseFailures)
	}
}

func TestScanHonorsExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "published/post.md", "---\ntitle: Post\n---\nbody\n")
	writeFile(t, root, "drafts/wip.md", "---\ntitle: WIP\n---\nbody\n")

	scanner := content.NewScanner(root, []string{"**/*.md"}, []string{"drafts/**"}, nil)
	records, stats, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 || records[0].Title != "Post" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if stats.FilesFound != 1 {
		t.Fatalf("excluded file should not be counted, got %d", stats.FilesFound)
	}
}

func TestScanMissingRootFails(t *testing.T) {
	scanner := content.NewScanner(filepath.Join(t.TempDir(), "absent"), nil, nil, nil)
	if _, _, err := scanner.Scan(context.Background()); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestScanRestartable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "---\ntitle: A\n---\nbody\n")

	scanner := content.NewScanner(root, nil, nil, nil)
	first, _, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, _, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if len(first) != len(second) || first[0].Title != second[0].Title {
		t.Fatal("repeated scans should yield identical records")
	}
}
