package match

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// PathHint is the structure recovered from a content file path laid out as
// YYYY-MM/NNN.slug-like-name.md. Zero fields mean the component was absent.
type PathHint struct {
	Year     int
	Month    int
	Sequence int
	Name     string
}

var pathHintPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParsePathHint extracts year, month, sequence, and a slug-like name from a
// relative file path. Paths that do not follow the dated layout still yield
// a usable Name from the file stem.
func ParsePathHint(relPath string) PathHint {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	dir, file := path.Split(relPath)

	hint := PathHint{}
	if m := pathHintPattern.FindStringSubmatch(path.Base(path.Clean(dir))); m != nil {
		hint.Year, _ = strconv.Atoi(m[1])
		hint.Month, _ = strconv.Atoi(m[2])
	}

	stem := strings.TrimSuffix(file, path.Ext(file))
	if seq, rest, found := strings.Cut(stem, "."); found {
		if n, err := strconv.Atoi(seq); err == nil {
			hint.Sequence = n
			stem = rest
		}
	}
	hint.Name = stem
	return hint
}
