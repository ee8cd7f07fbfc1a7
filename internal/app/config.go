package app

import "log/slog"

// Config carries the process-level options resolved by the CLI.
type Config struct {
	// SettingsPath points to the project settings file (.hcl, .yaml,
	// .yml, .ini or .toml).
	SettingsPath string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is text or json.
	LogFormat string
	// Parallelize forces concurrent branch execution regardless of the
	// settings file.
	Parallelize bool
}

// Level maps LogLevel onto its slog value. Unknown names fall back to
// info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewConfig returns a config with defaults applied.
func NewConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
	}
}
