package similarity

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// contentStripPattern matches everything content similarity ignores: runs of
// whitespace and any character that is not ASCII alphanumeric or CJK.
var contentStripPattern = regexp.MustCompile(`[^a-z0-9\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}]+`)

// StringSimilarity returns the normalized edit-distance similarity between
// two strings in [0, 1]. Two empty strings are identical (1.0); one empty
// string against a non-empty one scores 0.0. Distance is measured in runes.
func StringSimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(distance)/float64(longest)
}

// ContentSimilarity scores how alike two bodies of text are after reducing
// both to a normalized prefix of at most window runes. Normalization
// lowercases and strips whitespace and non-alphanumeric/non-CJK characters,
// so formatting and punctuation churn does not affect the score.
//
// Comparing bounded prefixes instead of full bodies is a deliberate
// precision/performance trade-off: the caller only needs "probably the same
// item", not exact equality.
func ContentSimilarity(bodyA, bodyB string, window int) float64 {
	return StringSimilarity(
		NormalizeContent(bodyA, window),
		NormalizeContent(bodyB, window),
	)
}

// NormalizeContent reduces text to its comparison form: lowercase, stripped
// of whitespace and punctuation, truncated to at most window runes. A
// non-positive window disables truncation.
func NormalizeContent(text string, window int) string {
	lowered := strings.ToLower(text)
	reduced := contentStripPattern.ReplaceAllString(lowered, "")
	if window <= 0 {
		return reduced
	}
	runes := []rune(reduced)
	if len(runes) <= window {
		return reduced
	}
	return string(runes[:window])
}
