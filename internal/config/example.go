package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasks configuration file
# Values can be overridden by TASKS_* environment variables or CLI flags

# Storage file holding saved tasks (relative to project root, supports ~)
data_file = ".tasks/storage.json"

# List the most recently created tasks first
newest_first = true

# Logging: level is debug, info, warn or error; format is text, json or logfmt
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false
`
}
