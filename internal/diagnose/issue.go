package diagnose

// Type classifies an issue by the inconsistency it describes.
type Type string

const (
	TypeMissingDB     Type = "missing_db"
	TypeMissingFile   Type = "missing_file"
	TypeTagMismatch   Type = "tag_mismatch"
	TypeMetadataDiff  Type = "metadata_diff"
	TypeSimilarTag    Type = "similar_tag"
	TypeParseFailure  Type = "parse_failure"
	TypeRepairFailure Type = "repair_failure"
)

// Severity orders issues by urgency.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityError:   0,
	SeverityWarning: 1,
	SeverityInfo:    2,
}

// Rank returns the sort position of the severity; lower is more urgent.
func (s Severity) Rank() int {
	if rank, ok := severityRank[s]; ok {
		return rank
	}
	return len(severityRank)
}

// Issue is one detected inconsistency between a content file and the mirror,
// or within the mirror itself. Path and RowID are filled when the issue is
// anchored to a file or a row; zero values mean not applicable.
type Issue struct {
	Type        Type     `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Path        string   `json:"path,omitempty"`
	RowID       int64    `json:"row_id,omitempty"`
	// Suggestion names the repair action that would resolve the issue, when
	// one exists. Informational only; check runs never apply it.
	Suggestion string `json:"suggestion,omitempty"`
}
