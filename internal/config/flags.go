package config

import (
	"flag"
	"strings"
)

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"data":           "data_file",
	"newest-first":   "newest_first",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// stringFlags are the global flags that take a separate value argument.
var stringFlags = map[string]bool{
	"data":       true,
	"log-level":  true,
	"log-format": true,
}

// parseFlags defines and parses the global CLI flags over cfg. Flags that
// were set explicitly are recorded as SourceFlag.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasks", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.DataFile, "data", cfg.DataFile, "Path to the task storage file")
	// Read before parsing by explicitConfigFile; defined here so Parse accepts it.
	var configFile string
	fs.StringVar(&configFile, "config", "", "Path to a config file (skips user and project config discovery)")

	// Display
	fs.BoolVar(&cfg.NewestFirst, "newest-first", cfg.NewestFirst, "List the most recently created tasks first")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if sources != nil {
		fs.Visit(func(f *flag.Flag) {
			if field, ok := flagToSource[f.Name]; ok {
				sources[field] = SourceFlag
			}
		})
	}
	return nil
}

// explicitConfigFile scans args for -config/--config before flag parsing,
// since the file has to be read before flags are applied on top of it.
// Scanning stops at the first non-flag argument, like flag.Parse.
func explicitConfigFile(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" || !strings.HasPrefix(arg, "-") {
			return ""
		}
		name := strings.TrimLeft(arg, "-")
		value := ""
		hasValue := false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}
		if name != "config" {
			if !hasValue && stringFlags[name] {
				i++
			}
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
		return ""
	}
	return ""
}
