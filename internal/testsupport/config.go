package testsupport

import (
	"path/filepath"
	"testing"

	"inksync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ContentDir = filepath.Join(base, "content")
	cfg.Paths.DatabasePath = filepath.Join(base, "mirror.db")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSynonym adds one synonym table entry to the test config.
func WithSynonym(variant, canonical string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Taxonomy.Synonyms[variant] = canonical
	}
}

// WithWorkers sets the repair worker count.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Repair.Workers = workers
	}
}
