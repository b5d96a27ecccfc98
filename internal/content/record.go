package content

import "time"

// Record is one parsed content file. Records are created fresh on every scan
// and never persisted; they exist only for the duration of one run.
type Record struct {
	// Path is the file's location relative to the scan root and identifies
	// the record within a single run.
	Path     string
	Title    string
	Category string
	// Tags is a flat set of non-empty, trimmed strings. The parser applies
	// the flattening/splitting rules before a Record is ever constructed, so
	// downstream code never sees nested arrays or comma-joined values.
	Tags   []string
	Source string
	Date   time.Time
	Body   string
}

// HasDate reports whether the file declared a parseable date.
func (r *Record) HasDate() bool {
	return !r.Date.IsZero()
}
