package config

import "github.com/nibzard/tasks-go/internal/taskdir"

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceFile     ConfigSource = "config file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultNewestFirst = true
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
)

// DefaultDataFile is the storage file used when none is configured,
// relative to the project root.
var DefaultDataFile = taskdir.StoragePath("")

// Config holds the full configuration for tasks.
type Config struct {
	// Storage
	DataFile string `toml:"data_file"`

	// Display
	NewestFirst bool `toml:"newest_first"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Explicit config file (--config or TASKS_CONFIG)
	ConfigFile string `toml:"-"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_file",
		"newest_first",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.NewestFirst = DefaultNewestFirst
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogTimestamps = false
	cfg.LogCaller = false
}
