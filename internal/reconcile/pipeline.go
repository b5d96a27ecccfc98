package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"inksync/internal/config"
	"inksync/internal/content"
	"inksync/internal/diagnose"
	"inksync/internal/logging"
	"inksync/internal/match"
	"inksync/internal/repair"
	"inksync/internal/report"
	"inksync/internal/store"
	"inksync/internal/taxonomy"
)

// lockFileName guards against overlapping runs; two pipelines over the same
// mirror would race each other's repairs.
const lockFileName = "inksync.lock"

// ErrRunLocked indicates another run currently holds the run lock.
var ErrRunLocked = errors.New("another run is already in progress")

// Options selects what a run covers.
type Options struct {
	// Depth controls how much a check inspects; repair runs always use full.
	Depth diagnose.Depth
	// ContentType restricts the run to one content type; empty means all.
	ContentType string
}

// Pipeline wires scanner, store, matcher, diagnoser, executor, and report
// into one run. Each run builds its own lookup snapshot; nothing is shared
// across runs.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a Pipeline.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Check scans, matches, and diagnoses without writing to the mirror.
func (p *Pipeline) Check(ctx context.Context, opts Options) (*report.Report, error) {
	return p.run(ctx, "check", opts, false)
}

// Repair runs a full check and applies the repair executor.
func (p *Pipeline) Repair(ctx context.Context, opts Options) (*report.Report, error) {
	opts.Depth = diagnose.DepthFull
	return p.run(ctx, "repair", opts, true)
}

func (p *Pipeline) run(ctx context.Context, mode string, opts Options, doRepair bool) (*report.Report, error) {
	if opts.Depth == "" {
		opts.Depth = diagnose.DepthFull
	}
	started := time.Now()
	runID := uuid.New()
	logger := p.logger.With(logging.String("run_id", runID.String()))

	if err := p.cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(p.cfg.Paths.LogDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrRunLocked
	}
	defer func() { _ = lock.Unlock() }()

	s, err := store.Open(p.cfg.Paths.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	defer func() { _ = s.Close() }()

	scanner := content.NewScanner(p.cfg.Paths.ContentDir, p.cfg.Scan.Include, p.cfg.Scan.Exclude, logger)
	records, stats, err := scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}

	normalizer := taxonomy.New(p.cfg.Taxonomy.Synonyms, p.cfg.Taxonomy.SlugMaxLength)
	matcher := match.NewMatcher(p.cfg.Matching, logger)
	diagnoser := diagnose.New(p.cfg, normalizer, logger)

	lookup, err := s.BuildLookup(ctx, opts.ContentType)
	if err != nil {
		return nil, err
	}
	result := matcher.Match(records, lookup.Contents)

	var tally *repair.Tally
	var repairFailures []repair.Failure
	if doRepair {
		executor := repair.New(s, normalizer, p.cfg.Repair, logger)
		runTally, failures, err := executor.Run(ctx, result.Matched, lookup)
		if err != nil {
			return nil, err
		}
		tally = &runTally
		repairFailures = failures

		// Diagnose against post-repair state so the report shows what is
		// still wrong, not what just got fixed.
		if lookup, err = s.BuildLookup(ctx, opts.ContentType); err != nil {
			return nil, err
		}
		result = matcher.Match(records, lookup.Contents)
	}

	issues := diagnoser.Diagnose(result, lookup, stats, opts.Depth)
	for _, failure := range repairFailures {
		issues = append(issues, diagnose.Issue{
			Type:        diagnose.TypeRepairFailure,
			Severity:    diagnose.SeverityError,
			Description: fmt.Sprintf("repair failed: %s", failure.Err),
			Path:        failure.Path,
			RowID:       failure.RowID,
		})
	}

	byStrategy := make(map[string]int)
	for _, pair := range result.Matched {
		byStrategy[pair.Strategy]++
	}
	r := &report.Report{
		RunID:             runID,
		Mode:              mode,
		Depth:             string(opts.Depth),
		ContentType:       opts.ContentType,
		StartedAt:         started,
		Duration:          time.Since(started).Round(time.Millisecond).String(),
		FilesScanned:      stats.FilesFound,
		ParseFailures:     len(stats.ParseFailures),
		RowsExamined:      len(lookup.Contents),
		Matched:           len(result.Matched),
		MatchedByStrategy: byStrategy,
		UnmatchedFiles:    len(result.UnmatchedFiles),
		UnmatchedRows:     len(result.UnmatchedRows),
		Issues:            issues,
		Tally:             tally,
	}

	if err := r.Save(p.cfg.Paths.ReportDir); err != nil {
		return nil, err
	}
	logger.Info("run complete",
		logging.String("mode", mode),
		logging.Int("matched", r.Matched),
		logging.Int("issues", len(r.Issues)))
	return r, nil
}
