package config

import "fmt"

// LoggingConfig defines the level and output format of the process logger.
type LoggingConfig struct {
	// Level is the minimum severity: debug, info, warn or error.
	Level string `json:"level"`
	// Format selects the writer: "json" lines or human readable "console".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks the level and format names.
func (c LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %s", c.Level)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown format %s", c.Format)
	}
	return nil
}
