package match

import (
	"log/slog"
	"sort"

	"inksync/internal/config"
	"inksync/internal/content"
	"inksync/internal/logging"
	"inksync/internal/similarity"
	"inksync/internal/store"
)

// Strategy names carried on each matched pair and tallied in reports.
const (
	StrategyExactTitle     = "exact_title"
	StrategyPathInferred   = "path_inferred"
	StrategyContentSimilar = "content_similar"
)

// Pair links one scanned file to one mirror row, tagged with the strategy
// that claimed it and the score it claimed at (1.0 for exact matches).
type Pair struct {
	File     *content.Record
	Row      *store.ContentRow
	Strategy string
	Score    float64
}

// Result partitions both sides of the run: every file and row appears in
// exactly one bucket.
type Result struct {
	Matched        []Pair
	UnmatchedFiles []*content.Record
	UnmatchedRows  []*store.ContentRow
}

// Matcher pairs scanned files against mirror rows using three ordered
// strategies, cheapest and strictest first. A row leaves the candidate pool
// the moment it is claimed, so the result is a bipartite matching.
type Matcher struct {
	cfg    config.Matching
	window int
	logger *slog.Logger
}

// NewMatcher builds a matcher from the configured thresholds.
func NewMatcher(cfg config.Matching, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{
		cfg:    cfg,
		window: cfg.ContentPrefixWindow,
		logger: logging.NewComponentLogger(logger, "match"),
	}
}

// Match runs the strategies in order over the unmatched remainder. Files
// are processed in scan order; candidate rows are kept sorted by id so ties
// resolve deterministically.
func (m *Matcher) Match(files []content.Record, rows []*store.ContentRow) Result {
	pool := make([]*store.ContentRow, len(rows))
	copy(pool, rows)
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })

	result := Result{}
	remaining := make([]*content.Record, len(files))
	for i := range files {
		remaining[i] = &files[i]
	}

	type strategy struct {
		name string
		fn   func(*content.Record, []*store.ContentRow) (int, float64)
	}
	strategies := []strategy{
		{StrategyExactTitle, m.matchExactTitle},
		{StrategyPathInferred, m.matchPathInferred},
		{StrategyContentSimilar, m.matchContentSimilar},
	}

	for _, strat := range strategies {
		var next []*content.Record
		claimed := 0
		for _, file := range remaining {
			idx, score := strat.fn(file, pool)
			if idx < 0 {
				next = append(next, file)
				continue
			}
			result.Matched = append(result.Matched, Pair{
				File:     file,
				Row:      pool[idx],
				Strategy: strat.name,
				Score:    score,
			})
			pool = append(pool[:idx], pool[idx+1:]...)
			claimed++
		}
		remaining = next
		m.logger.Debug("strategy pass complete",
			logging.String("strategy", strat.name),
			logging.Int("claimed", claimed),
			logging.Int("files_remaining", len(remaining)),
			logging.Int("rows_remaining", len(pool)))
	}

	result.UnmatchedFiles = remaining
	result.UnmatchedRows = pool
	m.logger.Info("matching complete",
		logging.Int("matched", len(result.Matched)),
		logging.Int("unmatched_files", len(result.UnmatchedFiles)),
		logging.Int("unmatched_rows", len(result.UnmatchedRows)))
	return result
}

// matchExactTitle claims the first row whose normalized title equals the
// file's normalized title.
func (m *Matcher) matchExactTitle(file *content.Record, pool []*store.ContentRow) (int, float64) {
	want := NormalizeTitle(file.Title)
	if want == "" {
		return -1, 0
	}
	for i, row := range pool {
		if NormalizeTitle(row.Title) == want {
			return i, 1.0
		}
	}
	return -1, 0
}

// matchPathInferred scores every remaining row against the date and slug
// recovered from the file path. Strictly-greater comparison against the
// best-so-far keeps first-encountered-wins on ties.
func (m *Matcher) matchPathInferred(file *content.Record, pool []*store.ContentRow) (int, float64) {
	hint := ParsePathHint(file.Path)
	if hint.Name == "" {
		return -1, 0
	}

	bestIdx, bestScore := -1, 0.0
	for i, row := range pool {
		score := 0.0
		if hint.Year != 0 && row.CreatedAt.Year() == hint.Year {
			score += 0.3
		}
		if hint.Month != 0 && int(row.CreatedAt.Month()) == hint.Month {
			score += 0.3
		}
		score += 0.4 * similarity.StringSimilarity(hint.Name, row.Slug)
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestScore > m.cfg.PathScoreThreshold {
		return bestIdx, bestScore
	}
	return -1, 0
}

// matchContentSimilar combines title and body similarity, gated on the title
// side so unrelated rows never reach the body comparison.
func (m *Matcher) matchContentSimilar(file *content.Record, pool []*store.ContentRow) (int, float64) {
	fileTitle := NormalizeTitle(file.Title)
	bestIdx, bestScore := -1, 0.0
	for i, row := range pool {
		titleSim := similarity.StringSimilarity(fileTitle, NormalizeTitle(row.Title))
		if titleSim <= m.cfg.TitleSimilarityThreshold {
			continue
		}
		combined := 0.7*titleSim + 0.3*similarity.ContentSimilarity(file.Body, row.Content, m.window)
		if combined > bestScore {
			bestIdx, bestScore = i, combined
		}
	}
	if bestScore > m.cfg.CombinedThreshold {
		return bestIdx, bestScore
	}
	return -1, 0
}
