package taxonomy

import (
	"regexp"
	"strings"
)

// slugStripPattern matches runs of characters outside the slug alphabet
// (lowercase ASCII alphanumerics and CJK); each run collapses to one hyphen.
var slugStripPattern = regexp.MustCompile(`[^a-z0-9\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}]+`)

// Normalizer canonicalizes tag and category names. The synonym table is
// consulted before slug generation so known variants collapse to one
// canonical entity instead of creating near-duplicates.
type Normalizer struct {
	synonyms   map[string]string
	maxSlugLen int
}

// New constructs a Normalizer with the provided synonym table and slug
// length cap. A non-positive cap falls back to 64.
func New(synonyms map[string]string, maxSlugLen int) *Normalizer {
	if maxSlugLen <= 0 {
		maxSlugLen = 64
	}
	table := make(map[string]string, len(synonyms))
	for variant, canonical := range synonyms {
		variant = strings.TrimSpace(variant)
		canonical = strings.TrimSpace(canonical)
		if variant == "" || canonical == "" {
			continue
		}
		table[strings.ToLower(variant)] = canonical
	}
	return &Normalizer{synonyms: table, maxSlugLen: maxSlugLen}
}

// Resolve returns the canonical display form for a name: the synonym-table
// entry when one exists, otherwise the trimmed input unchanged.
func (n *Normalizer) Resolve(name string) string {
	name = strings.TrimSpace(name)
	if n == nil || name == "" {
		return name
	}
	if canonical, ok := n.synonyms[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}

// IsSynonym reports whether name is a known variant of a different canonical
// form. Names that already are the canonical form return false.
func (n *Normalizer) IsSynonym(name string) bool {
	if n == nil {
		return false
	}
	name = strings.TrimSpace(name)
	canonical, ok := n.synonyms[strings.ToLower(name)]
	return ok && canonical != name
}

// Canonicalize returns the canonical slug for a name: synonym resolution
// first, then the slug transform.
func (n *Normalizer) Canonicalize(name string) string {
	if n == nil {
		return Slugify(name, 0)
	}
	return Slugify(n.Resolve(name), n.maxSlugLen)
}

// Slugify converts a name to its normalized identifier form: lowercase, runs
// of non-alphanumeric/non-CJK characters collapsed to single hyphens,
// leading/trailing hyphens trimmed, length capped at maxLen runes. A
// non-positive maxLen falls back to 64.
func Slugify(name string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 64
	}
	lowered := strings.ToLower(strings.TrimSpace(name))
	slug := slugStripPattern.ReplaceAllString(lowered, "-")
	slug = strings.Trim(slug, "-")
	runes := []rune(slug)
	if len(runes) > maxLen {
		slug = strings.Trim(string(runes[:maxLen]), "-")
	}
	return slug
}
