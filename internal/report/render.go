package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"inksync/internal/diagnose"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// RenderConsole writes the human-readable report. Color is the caller's
// call; commands pass the result of a tty check.
func (r *Report) RenderConsole(w io.Writer, colorize bool) {
	fmt.Fprintf(w, "%s run %s (%s)\n", r.Mode, r.RunID, r.Duration)
	fmt.Fprintln(w)

	summary := [][]string{
		{"Files scanned", fmt.Sprintf("%d", r.FilesScanned)},
		{"Parse failures", fmt.Sprintf("%d", r.ParseFailures)},
		{"Rows examined", fmt.Sprintf("%d", r.RowsExamined)},
		{"Matched", fmt.Sprintf("%d", r.Matched)},
		{"Unmatched files", fmt.Sprintf("%d", r.UnmatchedFiles)},
		{"Unmatched rows", fmt.Sprintf("%d", r.UnmatchedRows)},
	}
	for _, strategy := range sortedStrategies(r.MatchedByStrategy) {
		summary = append(summary, []string{
			"  via " + strategy, fmt.Sprintf("%d", r.MatchedByStrategy[strategy]),
		})
	}
	fmt.Fprintln(w, renderTable([]string{"Metric", "Count"}, summary, []columnAlignment{alignLeft, alignRight}))

	if r.Tally != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderTable([]string{"Repair action", "Count"}, [][]string{
			{"Tags created", fmt.Sprintf("%d", r.Tally.TagsCreated)},
			{"Tags merged", fmt.Sprintf("%d", r.Tally.TagsMerged)},
			{"Categories created", fmt.Sprintf("%d", r.Tally.CategoriesCreated)},
			{"Categories merged", fmt.Sprintf("%d", r.Tally.CategoriesMerged)},
			{"Items relinked", fmt.Sprintf("%d", r.Tally.ItemsRelinked)},
			{"Fields synced", fmt.Sprintf("%d", r.Tally.FieldsSynced)},
			{"Items failed", fmt.Sprintf("%d", r.Tally.ItemsFailed)},
		}, []columnAlignment{alignLeft, alignRight}))
	}

	fmt.Fprintln(w)
	if len(r.Issues) == 0 {
		line := "No issues found."
		if colorize {
			line = ansiGreen + line + ansiReset
		}
		fmt.Fprintln(w, line)
		return
	}

	counts := r.IssueCounts()
	fmt.Fprintf(w, "Issues: %d error, %d warning, %d info\n",
		counts[diagnose.SeverityError], counts[diagnose.SeverityWarning], counts[diagnose.SeverityInfo])
	for _, issue := range r.Issues {
		label := fmt.Sprintf("[%s]", strings.ToUpper(string(issue.Severity)))
		if colorize {
			label = severityColor(issue.Severity) + label + ansiReset
		}
		anchor := issue.Path
		if anchor == "" && issue.RowID != 0 {
			anchor = fmt.Sprintf("row %d", issue.RowID)
		}
		if anchor != "" {
			anchor = " " + anchor + ":"
		}
		fmt.Fprintf(w, "  %s %s%s %s\n", label, issue.Type, anchor, issue.Description)
	}
}

// RenderJSON writes the machine-readable form.
func (r *Report) RenderJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// RenderMarkdown writes a narrative document suitable for dropping into an
// issue tracker or run log.
func (r *Report) RenderMarkdown(w io.Writer) {
	fmt.Fprintf(w, "# Reconciliation %s run %s\n\n", r.Mode, r.RunID)
	fmt.Fprintf(w, "- Started: %s\n", r.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "- Duration: %s\n", r.Duration)
	fmt.Fprintf(w, "- Files scanned: %d (%d parse failures)\n", r.FilesScanned, r.ParseFailures)
	fmt.Fprintf(w, "- Rows examined: %d\n", r.RowsExamined)
	fmt.Fprintf(w, "- Matched: %d (files unmatched: %d, rows unmatched: %d)\n",
		r.Matched, r.UnmatchedFiles, r.UnmatchedRows)
	for _, strategy := range sortedStrategies(r.MatchedByStrategy) {
		fmt.Fprintf(w, "  - %s: %d\n", strategy, r.MatchedByStrategy[strategy])
	}

	if r.Tally != nil {
		fmt.Fprintf(w, "\n## Repairs\n\n")
		fmt.Fprintf(w, "- Tags created: %d, merged: %d\n", r.Tally.TagsCreated, r.Tally.TagsMerged)
		fmt.Fprintf(w, "- Categories created: %d, merged: %d\n", r.Tally.CategoriesCreated, r.Tally.CategoriesMerged)
		fmt.Fprintf(w, "- Items relinked: %d, fields synced: %d, failed: %d\n",
			r.Tally.ItemsRelinked, r.Tally.FieldsSynced, r.Tally.ItemsFailed)
	}

	fmt.Fprintf(w, "\n## Issues (%d)\n\n", len(r.Issues))
	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "None.")
		return
	}
	fmt.Fprintln(w, "| Severity | Type | Anchor | Description |")
	fmt.Fprintln(w, "| --- | --- | --- | --- |")
	for _, issue := range r.Issues {
		anchor := issue.Path
		if anchor == "" && issue.RowID != 0 {
			anchor = fmt.Sprintf("row %d", issue.RowID)
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			issue.Severity, issue.Type, anchor, strings.ReplaceAll(issue.Description, "|", `\|`))
	}
}

func severityColor(severity diagnose.Severity) string {
	switch severity {
	case diagnose.SeverityError:
		return ansiRed
	case diagnose.SeverityWarning:
		return ansiYellow
	default:
		return ansiBlue
	}
}

func sortedStrategies(byStrategy map[string]int) []string {
	strategies := make([]string, 0, len(byStrategy))
	for strategy := range byStrategy {
		strategies = append(strategies, strategy)
	}
	sort.Strings(strategies)
	return strategies
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
