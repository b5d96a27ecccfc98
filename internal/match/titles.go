package match

import (
	"strings"

	"golang.org/x/text/width"
)

var titleReplacer = strings.NewReplacer(
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"：", ":", // full-width colon
	"∶", ":", // ratio colon
	"（", "", // full-width parens are decoration, drop them
	"）", "",
	"(", "",
	")", "",
)

// NormalizeTitle reduces a title to its comparison form: narrow full-width
// characters, unify quote and colon variants, drop parentheses, and collapse
// whitespace runs. Titles sourced from frontmatter and titles stored in the
// mirror frequently disagree only in these details.
func NormalizeTitle(title string) string {
	title = width.Narrow.String(title)
	title = titleReplacer.Replace(title)
	return strings.Join(strings.Fields(title), " ")
}
