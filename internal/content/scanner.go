package content

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"inksync/internal/logging"
)

// ScanStats accumulates counters for one scan pass.
type ScanStats struct {
	FilesFound    int
	Parsed        int
	ParseFailures []ParseFailure
}

// ParseFailure records one file the scanner had to skip.
type ParseFailure struct {
	Path string
	Err  string
}

// Scanner walks a content directory and parses matching files into Records.
// Scanning is side-effect-free and restartable; every call reflects the
// current on-disk truth.
type Scanner struct {
	root    string
	include []string
	exclude []string
	logger  *slog.Logger
}

// NewScanner constructs a scanner over root. Include and exclude are
// doublestar globs relative to root; an empty include list matches all
// markdown files.
func NewScanner(root string, include, exclude []string, logger *slog.Logger) *Scanner {
	if len(include) == 0 {
		include = []string{"**/*.md"}
	}
	return &Scanner{
		root:    root,
		include: include,
		exclude: exclude,
		logger:  logging.NewComponentLogger(logger, "scanner"),
	}
}

// Scan walks the tree and returns parsed records in walk order. A file that
// fails to parse is logged, counted, and skipped; only I/O problems with the
// walk itself or a missing root abort the scan.
func (s *Scanner) Scan(ctx context.Context) ([]Record, ScanStats, error) {
	var stats ScanStats

	info, err := os.Stat(s.root)
	if err != nil {
		return nil, stats, fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("content root %q is not a directory", s.root)
	}

	var records []Record
	walkErr := filepath.WalkDir(s.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return fmt.Errorf("relativize %q: %w", path, err)
		}
		rel = filepath.ToSlash(rel)
		if !s.matches(rel) {
			return nil
		}

		stats.FilesFound++
		data, err := os.ReadFile(path)
		if err != nil {
			s.recordFailure(&stats, rel, err)
			return nil
		}
		record, err := Parse(rel, data)
		if err != nil {
			s.recordFailure(&stats, rel, err)
			return nil
		}
		stats.Parsed++
		records = append(records, *record)
		return nil
	})
	if walkErr != nil {
		return nil, stats, fmt.Errorf("walk content root: %w", walkErr)
	}

	s.logger.Info("scan complete",
		logging.Int("files_found", stats.FilesFound),
		logging.Int("parsed", stats.Parsed),
		logging.Int("parse_failures", len(stats.ParseFailures)),
	)
	return records, stats, nil
}

func (s *Scanner) recordFailure(stats *ScanStats, rel string, err error) {
	stats.ParseFailures = append(stats.ParseFailures, ParseFailure{Path: rel, Err: err.Error()})
	s.logger.Warn("skipping unparsable file",
		logging.String("path", rel),
		logging.Error(err),
	)
}

func (s *Scanner) matches(rel string) bool {
	included := false
	for _, pattern := range s.include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range s.exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return false
		}
	}
	return true
}
