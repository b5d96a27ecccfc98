package config

const (
	defaultContentDir   = "~/content"
	defaultDatabasePath = "~/.local/share/inksync/mirror.db"
	defaultLogDir       = "~/.local/share/inksync/logs"
	defaultReportDir    = "~/.local/share/inksync/reports"

	defaultPathScoreThreshold       = 0.8
	defaultTitleSimilarityThreshold = 0.85
	defaultCombinedThreshold        = 0.8
	defaultContentPrefixWindow      = 200
	defaultDateToleranceDays        = 7

	defaultDuplicateThreshold = 0.9
	defaultSlugMaxLength      = 64

	defaultRepairWorkers = 1

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultScanInclude() []string {
	return []string{"**/*.md"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ContentDir:   defaultContentDir,
			DatabasePath: defaultDatabasePath,
			LogDir:       defaultLogDir,
			ReportDir:    defaultReportDir,
		},
		Scan: Scan{
			Include: defaultScanInclude(),
		},
		Matching: Matching{
			PathScoreThreshold:       defaultPathScoreThreshold,
			TitleSimilarityThreshold: defaultTitleSimilarityThreshold,
			CombinedThreshold:        defaultCombinedThreshold,
			ContentPrefixWindow:      defaultContentPrefixWindow,
			DateToleranceDays:        defaultDateToleranceDays,
		},
		Taxonomy: Taxonomy{
			Synonyms:           map[string]string{},
			DuplicateThreshold: defaultDuplicateThreshold,
			SlugMaxLength:      defaultSlugMaxLength,
		},
		Repair: Repair{
			Workers: defaultRepairWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
