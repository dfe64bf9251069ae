package config

import (
	"fmt"
	"strings"
)

// normalize case-folds enumerations and trims path-like fields before defaults run.
func normalize(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))

	seen := make(map[OutputFormat]bool, len(cfg.Output.Formats))
	formats := make([]OutputFormat, 0, len(cfg.Output.Formats))
	for _, raw := range cfg.Output.Formats {
		f, err := ParseOutputFormat(string(raw))
		if err != nil {
			return fmt.Errorf("output.formats: %w", err)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	cfg.Output.Formats = formats

	cfg.Hugo.Theme = strings.ToLower(strings.TrimSpace(cfg.Hugo.Theme))
	cfg.Content.Root = strings.TrimSpace(cfg.Content.Root)
	cfg.Output.Directory = strings.TrimSpace(cfg.Output.Directory)
	for i, p := range cfg.Build.ExpectedPrefixes {
		cfg.Build.ExpectedPrefixes[i] = strings.TrimSpace(p)
	}
	return nil
}
