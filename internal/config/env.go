package config

import (
	"os"

	"github.com/nibzard/tasks-go/internal/utils"
)

// loadFromEnv overrides config from TASKS_* environment variables and
// records them as SourceEnv.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}

	if v := os.Getenv("TASKS_DATA"); v != "" {
		cfg.DataFile = v
		set("data_file")
	}
	if v := os.Getenv("TASKS_NEWEST_FIRST"); v != "" {
		cfg.NewestFirst = utils.BoolFromString(v)
		set("newest_first")
	}

	// Logging configuration
	if v := os.Getenv("TASKS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv("TASKS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv("TASKS_LOG_TIMESTAMPS"); v != "" {
		cfg.LogTimestamps = utils.BoolFromString(v)
		set("log_timestamps")
	}
	if v := os.Getenv("TASKS_LOG_CALLER"); v != "" {
		cfg.LogCaller = utils.BoolFromString(v)
		set("log_caller")
	}
}
