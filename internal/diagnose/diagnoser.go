package diagnose

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"inksync/internal/config"
	"inksync/internal/content"
	"inksync/internal/logging"
	"inksync/internal/match"
	"inksync/internal/store"
	"inksync/internal/taxonomy"
)

// Depth selects how much of the mirror a check run inspects.
type Depth string

const (
	// DepthBasic reports only presence: unmatched files, unmatched rows,
	// and parse failures.
	DepthBasic Depth = "basic"
	// DepthTags adds tag set comparison and taxonomy checks.
	DepthTags Depth = "tags"
	// DepthFull adds metadata comparison and store-side counter checks.
	DepthFull Depth = "full"
)

// ParseDepth validates a depth flag value.
func ParseDepth(value string) (Depth, error) {
	switch Depth(value) {
	case DepthBasic, DepthTags, DepthFull:
		return Depth(value), nil
	case "":
		return DepthFull, nil
	default:
		return "", fmt.Errorf("unknown check depth %q (expected basic, tags, or full)", value)
	}
}

// Diagnoser compares matched file/row pairs and the mirror's own internal
// state, producing issues. It never writes.
type Diagnoser struct {
	matching   config.Matching
	normalizer *taxonomy.Normalizer
	duplicates float64
	logger     *slog.Logger
}

// New constructs a Diagnoser from the run configuration.
func New(cfg *config.Config, normalizer *taxonomy.Normalizer, logger *slog.Logger) *Diagnoser {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Diagnoser{
		matching:   cfg.Matching,
		normalizer: normalizer,
		duplicates: cfg.Taxonomy.DuplicateThreshold,
		logger:     logging.NewComponentLogger(logger, "diagnose"),
	}
}

// Diagnose inspects the match result and the mirror snapshot at the given
// depth. Issues come back sorted by severity, then type, then anchor, so
// output is stable across runs.
func (d *Diagnoser) Diagnose(result match.Result, lookup *store.Lookup, stats content.ScanStats, depth Depth) []Issue {
	var issues []Issue

	for _, failure := range stats.ParseFailures {
		issues = append(issues, Issue{
			Type:        TypeParseFailure,
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("file could not be parsed: %s", failure.Err),
			Path:        failure.Path,
		})
	}
	for _, file := range result.UnmatchedFiles {
		issues = append(issues, Issue{
			Type:        TypeMissingDB,
			Severity:    SeverityError,
			Description: fmt.Sprintf("file %q has no matching row", file.Path),
			Path:        file.Path,
		})
	}
	for _, row := range result.UnmatchedRows {
		issues = append(issues, Issue{
			Type:        TypeMissingFile,
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("row %d (%q) has no matching file; files may be legitimately deleted", row.ID, row.Title),
			RowID:       row.ID,
		})
	}

	if depth == DepthTags || depth == DepthFull {
		for _, pair := range result.Matched {
			issues = append(issues, d.diagnoseTags(pair, lookup)...)
		}
		issues = append(issues, d.diagnoseTaxonomy(lookup)...)
	}
	if depth == DepthFull {
		for _, pair := range result.Matched {
			issues = append(issues, d.diagnoseMetadata(pair, lookup)...)
		}
		issues = append(issues, d.diagnoseUsageCounts(lookup)...)
	}

	sortIssues(issues)
	d.logger.Info("diagnosis complete",
		logging.String("depth", string(depth)),
		logging.Int("issues", len(issues)))
	return issues
}

// diagnoseTags compares the canonical tag set declared by the file against
// the row's associations. File-side tags missing from the row are errors
// (the file is truth); row-only tags are warnings.
func (d *Diagnoser) diagnoseTags(pair match.Pair, lookup *store.Lookup) []Issue {
	fileSlugs := make(map[string]string, len(pair.File.Tags))
	for _, name := range pair.File.Tags {
		if slug := d.normalizer.Canonicalize(name); slug != "" {
			fileSlugs[slug] = name
		}
	}

	rowSlugs := make(map[string]string)
	for _, tagID := range lookup.Associations[pair.Row.ID] {
		if tag := lookup.TagsByID[tagID]; tag != nil {
			rowSlugs[tag.Slug] = tag.Name
		}
	}

	var issues []Issue
	for _, slug := range sortedKeys(fileSlugs) {
		if _, ok := rowSlugs[slug]; !ok {
			issues = append(issues, Issue{
				Type:        TypeTagMismatch,
				Severity:    SeverityError,
				Description: fmt.Sprintf("tag %q declared in file but not associated with row %d", fileSlugs[slug], pair.Row.ID),
				Path:        pair.File.Path,
				RowID:       pair.Row.ID,
				Suggestion:  "relink content tags from file",
			})
		}
	}
	for _, slug := range sortedKeys(rowSlugs) {
		if _, ok := fileSlugs[slug]; !ok {
			issues = append(issues, Issue{
				Type:        TypeTagMismatch,
				Severity:    SeverityWarning,
				Description: fmt.Sprintf("row %d carries tag %q not declared in file", pair.Row.ID, rowSlugs[slug]),
				Path:        pair.File.Path,
				RowID:       pair.Row.ID,
				Suggestion:  "relink content tags from file",
			})
		}
	}
	return issues
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// diagnoseMetadata compares scalar fields: source, category, and dates.
func (d *Diagnoser) diagnoseMetadata(pair match.Pair, lookup *store.Lookup) []Issue {
	var issues []Issue
	file, row := pair.File, pair.Row

	if file.Source != "" && file.Source != row.Source {
		issues = append(issues, Issue{
			Type:        TypeMetadataDiff,
			Severity:    SeverityInfo,
			Description: fmt.Sprintf("source differs: file %q, row %q", file.Source, row.Source),
			Path:        file.Path,
			RowID:       row.ID,
			Suggestion:  "sync source field from file",
		})
	}

	if file.Category != "" {
		wantSlug := d.normalizer.Canonicalize(file.Category)
		var haveSlug string
		if row.CategoryID != nil {
			if category := lookup.CategoriesByID[*row.CategoryID]; category != nil {
				haveSlug = category.Slug
			}
		}
		if wantSlug != haveSlug {
			issues = append(issues, Issue{
				Type:        TypeMetadataDiff,
				Severity:    SeverityWarning,
				Description: fmt.Sprintf("category differs: file %q, row category slug %q", file.Category, haveSlug),
				Path:        file.Path,
				RowID:       row.ID,
				Suggestion:  "sync category link from file",
			})
		}
	}

	if file.HasDate() {
		rowDate := row.CreatedAt
		if row.PublishedAt != nil {
			rowDate = *row.PublishedAt
		}
		tolerance := time.Duration(d.matching.DateToleranceDays) * 24 * time.Hour
		if drift := absDuration(file.Date.Sub(rowDate)); drift > tolerance {
			issues = append(issues, Issue{
				Type:     TypeMetadataDiff,
				Severity: SeverityWarning,
				Description: fmt.Sprintf("date drift of %d days exceeds tolerance of %d days",
					int(drift.Hours()/24), d.matching.DateToleranceDays),
				Path:  file.Path,
				RowID: row.ID,
			})
		}
	}
	return issues
}

// diagnoseTaxonomy flags likely-duplicate tag names. Similarity alone never
// merges anything; these issues are advisory.
func (d *Diagnoser) diagnoseTaxonomy(lookup *store.Lookup) []Issue {
	var issues []Issue
	for _, pair := range d.normalizer.FindSimilar(lookup.TagNames(), d.duplicates) {
		issues = append(issues, Issue{
			Type:        TypeSimilarTag,
			Severity:    SeverityWarning,
			Description: fmt.Sprintf("tags %q and %q look like duplicates (similarity %.2f); add a synonym entry to merge", pair.A, pair.B, pair.Score),
			Suggestion:  "add synonym table entry",
		})
	}
	return issues
}

// diagnoseUsageCounts verifies the denormalized counters against the join
// table.
func (d *Diagnoser) diagnoseUsageCounts(lookup *store.Lookup) []Issue {
	ids := make([]int64, 0, len(lookup.TagsByID))
	for id := range lookup.TagsByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var issues []Issue
	for _, id := range ids {
		tag := lookup.TagsByID[id]
		actual := lookup.AssociationCount(id)
		if tag.UsageCount == actual {
			continue
		}
		severity := SeverityWarning
		if actual == 0 {
			severity = SeverityInfo
		}
		issues = append(issues, Issue{
			Type:        TypeMetadataDiff,
			Severity:    severity,
			Description: fmt.Sprintf("tag %q usage_count is %d but %d associations exist", tag.Name, tag.UsageCount, actual),
			Suggestion:  "recompute usage counts",
		})
	}
	return issues
}

// sortIssues orders by severity, then type, then file path, then row id.
func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.RowID < b.RowID
	})
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
