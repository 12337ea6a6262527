// Package taskdir provides constants and utilities for the .tasks directory structure.
package taskdir

import "path/filepath"

const (
	// Dir is the name of the per-project state directory.
	Dir = ".tasks"

	// DefaultStorageFile is the default key-value storage file name (inside .tasks).
	DefaultStorageFile = "storage.json"

	// DefaultConfigFile is the default config file name (inside .tasks).
	DefaultConfigFile = "tasks.toml"
)

// StoragePath returns the full path to the storage file within a work directory.
func StoragePath(workDir string) string {
	return joinPath(workDir, DefaultStorageFile)
}

// ConfigPath returns the full path to the config file within a work directory.
func ConfigPath(workDir string) string {
	return joinPath(workDir, DefaultConfigFile)
}

// DirPath returns the full path to the .tasks directory within a work directory.
func DirPath(workDir string) string {
	if workDir == "." || workDir == "" {
		return Dir
	}
	return filepath.Join(workDir, Dir)
}

func joinPath(workDir, file string) string {
	return filepath.Join(DirPath(workDir), file)
}
