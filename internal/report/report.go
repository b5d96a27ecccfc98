package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"inksync/internal/diagnose"
	"inksync/internal/repair"
)

// latestFileName is where every run drops its report; `report export` reads
// it back.
const latestFileName = "last_run.json"

// ErrNoReport indicates no prior run has written a report yet.
var ErrNoReport = errors.New("no report found; run check or repair first")

// Report aggregates everything one run produced. It is built purely from
// scanner, matcher, diagnoser, and executor outputs; rendering adds no
// information.
type Report struct {
	RunID       uuid.UUID `json:"run_id"`
	Mode        string    `json:"mode"`
	Depth       string    `json:"depth,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	Duration    string    `json:"duration"`

	FilesScanned  int `json:"files_scanned"`
	ParseFailures int `json:"parse_failures"`
	RowsExamined  int `json:"rows_examined"`

	Matched           int              `json:"matched"`
	MatchedByStrategy map[string]int   `json:"matched_by_strategy"`
	UnmatchedFiles    int              `json:"unmatched_files"`
	UnmatchedRows     int              `json:"unmatched_rows"`
	Issues            []diagnose.Issue `json:"issues"`
	Tally             *repair.Tally    `json:"tally,omitempty"`
}

// IssueCounts groups the issue list by severity.
func (r *Report) IssueCounts() map[diagnose.Severity]int {
	counts := make(map[diagnose.Severity]int)
	for _, issue := range r.Issues {
		counts[issue.Severity]++
	}
	return counts
}

// HasErrors reports whether any error-severity issue remains; check runs use
// this for their exit code.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == diagnose.SeverityError {
			return true
		}
	}
	return false
}

// Save writes the report into dir as the latest run, atomically via a
// rename so a crashed run never leaves a truncated report behind.
func (r *Report) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	target := filepath.Join(dir, latestFileName)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

// LoadLatest reads back the most recent saved report from dir.
func LoadLatest(dir string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(dir, latestFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
