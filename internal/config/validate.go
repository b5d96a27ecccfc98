package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateTaxonomy(); err != nil {
		return err
	}
	if err := c.validateRepair(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.ContentDir == "" {
		return errors.New("paths.content_dir must be set")
	}
	if c.Paths.DatabasePath == "" {
		return errors.New("paths.database_path must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.ReportDir == "" {
		return errors.New("paths.report_dir must be set")
	}
	return nil
}

func (c *Config) validateMatching() error {
	for name, value := range map[string]float64{
		"matching.path_score_threshold":       c.Matching.PathScoreThreshold,
		"matching.title_similarity_threshold": c.Matching.TitleSimilarityThreshold,
		"matching.combined_threshold":         c.Matching.CombinedThreshold,
	} {
		if value <= 0 || value > 1 {
			return fmt.Errorf("%s must be in (0, 1]", name)
		}
	}
	if c.Matching.ContentPrefixWindow <= 0 {
		return errors.New("matching.content_prefix_window must be positive")
	}
	if c.Matching.DateToleranceDays < 0 {
		return errors.New("matching.date_tolerance_days must not be negative")
	}
	return nil
}

func (c *Config) validateTaxonomy() error {
	if c.Taxonomy.DuplicateThreshold <= 0 || c.Taxonomy.DuplicateThreshold > 1 {
		return errors.New("taxonomy.duplicate_threshold must be in (0, 1]")
	}
	if c.Taxonomy.SlugMaxLength < 8 {
		return errors.New("taxonomy.slug_max_length must be at least 8")
	}
	return nil
}

func (c *Config) validateRepair() error {
	if c.Repair.Workers < 1 {
		return errors.New("repair.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
