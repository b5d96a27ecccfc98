package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// ContentFile describes one markdown fixture for WriteContentTree.
type ContentFile struct {
	// Rel is the path relative to the content root, e.g. "2024-05/001.x.md".
	Rel      string
	Title    string
	Category string
	Tags     []string
	Source   string
	Date     string
	Body     string
}

// WriteContentFile materializes one frontmatter markdown file under root.
func WriteContentFile(t testing.TB, root string, file ContentFile) {
	t.Helper()

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", file.Title)
	if file.Category != "" {
		fmt.Fprintf(&b, "category: %q\n", file.Category)
	}
	if len(file.Tags) > 0 {
		b.WriteString("tags:\n")
		for _, tag := range file.Tags {
			fmt.Fprintf(&b, "  - %q\n", tag)
		}
	}
	if file.Source != "" {
		fmt.Fprintf(&b, "source: %q\n", file.Source)
	}
	if file.Date != "" {
		fmt.Fprintf(&b, "date: %s\n", file.Date)
	}
	b.WriteString("---\n")
	b.WriteString(file.Body)

	path := filepath.Join(root, filepath.FromSlash(file.Rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create dir for %s: %v", file.Rel, err)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", file.Rel, err)
	}
}

// WriteContentTree materializes a set of fixtures under root.
func WriteContentTree(t testing.TB, root string, files ...ContentFile) {
	t.Helper()
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("create content root: %v", err)
	}
	for _, file := range files {
		WriteContentFile(t, root, file)
	}
}
