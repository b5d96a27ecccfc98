// Package content scans a markdown content tree into structured records.
//
// Each file carries a YAML frontmatter header (title, category, tags, source,
// date) followed by the body. The parser is strict about output shape and
// permissive about input shape: historical defects such as nested tag arrays
// ([[a, b]]) and comma-joined tag scalars are normalized into a flat tag set
// at parse time so no downstream code has to handle them.
//
// A scan never fails because of one bad file; unparsable files are logged,
// counted in ScanStats, and skipped.
package content
