package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and database location configuration.
type Paths struct {
	ContentDir   string `toml:"content_dir"`
	DatabasePath string `toml:"database_path"`
	LogDir       string `toml:"log_dir"`
	ReportDir    string `toml:"report_dir"`
}

// Scan contains configuration for the content directory scanner.
type Scan struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// Matching contains the tunable thresholds for the matching engine.
//
// The defaults come from the values the migration scripts converged on in
// production. They are empirical, not derived; treat them as a starting point
// and recalibrate against real data when matching quality degrades.
type Matching struct {
	// PathScoreThreshold is the minimum path-inferred score (year + month +
	// slug similarity) required to accept a strategy-2 match.
	PathScoreThreshold float64 `toml:"path_score_threshold"`
	// TitleSimilarityThreshold gates strategy 3: content similarity is only
	// computed when title similarity already exceeds this value.
	TitleSimilarityThreshold float64 `toml:"title_similarity_threshold"`
	// CombinedThreshold is the minimum weighted title+content score required
	// to accept a strategy-3 match.
	CombinedThreshold float64 `toml:"combined_threshold"`
	// ContentPrefixWindow is the number of runes of normalized body text
	// compared by content similarity.
	ContentPrefixWindow int `toml:"content_prefix_window"`
	// DateToleranceDays is the allowed drift between a file date and the row
	// publication date before a metadata_diff issue is raised.
	DateToleranceDays int `toml:"date_tolerance_days"`
}

// Taxonomy contains tag and category canonicalization settings.
type Taxonomy struct {
	// Synonyms maps variant spellings to their canonical display form.
	// Entries here are the only basis for automatic merges.
	Synonyms map[string]string `toml:"synonyms"`
	// DuplicateThreshold is the name similarity above which two entities are
	// flagged as likely duplicates. Flag only; never auto-merged.
	DuplicateThreshold float64 `toml:"duplicate_threshold"`
	// SlugMaxLength caps generated slugs.
	SlugMaxLength int `toml:"slug_max_length"`
}

// Repair contains configuration for the repair executor.
type Repair struct {
	// Workers bounds the number of content items repaired concurrently.
	Workers int `toml:"workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for inksync.
//
// Configuration sections by subsystem:
//   - Paths: content root, mirror database, log and report directories
//   - Scan: include/exclude globs for the content scanner
//   - Matching: matching engine thresholds
//   - Taxonomy: synonym table and duplicate detection
//   - Repair: executor concurrency
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Scan     Scan     `toml:"scan"`
	Matching Matching `toml:"matching"`
	Taxonomy Taxonomy `toml:"taxonomy"`
	Repair   Repair   `toml:"repair"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/inksync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("inksync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The content
// directory is deliberately excluded: a missing content root is a fatal
// configuration error, not something to paper over by creating it.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.ReportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if dbDir := filepath.Dir(c.Paths.DatabasePath); dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return fmt.Errorf("create database directory %q: %w", dbDir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	for _, field := range []*string{
		&c.Paths.ContentDir,
		&c.Paths.DatabasePath,
		&c.Paths.LogDir,
		&c.Paths.ReportDir,
	} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if len(c.Scan.Include) == 0 {
		c.Scan.Include = defaultScanInclude()
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	normalized := make(map[string]string, len(c.Taxonomy.Synonyms))
	for variant, canonical := range c.Taxonomy.Synonyms {
		variant = strings.TrimSpace(variant)
		canonical = strings.TrimSpace(canonical)
		if variant == "" || canonical == "" {
			continue
		}
		normalized[variant] = canonical
	}
	c.Taxonomy.Synonyms = normalized

	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
