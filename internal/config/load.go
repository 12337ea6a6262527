package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasks/tasks.toml or OS-specific config dir)
// 3. Project config file (tasks.toml, .tasks.toml or .tasks/tasks.toml)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Returns ConfigWithSources containing the config and a map of field names to their sources.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		cws.Sources[field] = SourceDefault
	}

	// An explicit config file replaces discovery.
	explicit := explicitConfigFile(args)
	if explicit == "" {
		explicit = os.Getenv("TASKS_CONFIG")
	}

	if explicit != "" {
		path := expandPath(explicit)
		if err := loadConfigFile(cfg, path, cws.Sources, SourceFile); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		cws.Files = append(cws.Files, path)
	} else {
		// 2. Try to load from user config file
		if userConfigFile := findUserConfigFile(); userConfigFile != "" {
			if err := loadConfigFile(cfg, userConfigFile, cws.Sources, SourceUserFile); err != nil {
				return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
			}
			cws.Files = append(cws.Files, userConfigFile)
		}

		// 3. Try to load from project config file (overrides user config)
		if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
			if err := loadConfigFile(cfg, projectConfigFile, cws.Sources, SourceProjFile); err != nil {
				return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
			}
			cws.Files = append(cws.Files, projectConfigFile)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, cws.Sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return cws, nil
}

// GetConfigFile returns the highest-priority config file that was read, if any.
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// SortedFields returns the tracked field names in sorted order.
func (cws *ConfigWithSources) SortedFields() []string {
	fields := make([]string, 0, len(cws.Sources))
	for field := range cws.Sources {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// loadConfigFile decodes TOML from path over cfg and records which keys it set.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values and validates paths.
func finalizeConfig(cfg *Config) error {
	// Expand ~ in paths
	cfg.DataFile = expandPath(cfg.DataFile)

	// Determine project root
	if cfg.ProjectRoot == "" {
		// Use current working directory
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	if cfg.DataFile == "" {
		return fmt.Errorf("data file path is empty")
	}

	// Make paths absolute if they're relative
	if !filepath.IsAbs(cfg.DataFile) {
		cfg.DataFile = filepath.Join(cfg.ProjectRoot, cfg.DataFile)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch cfg.LogFormat {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q (expected text, json, or logfmt)", cfg.LogFormat)
	}

	return nil
}
