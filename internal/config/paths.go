package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands $VAR references and a leading ~ in p. A ~\ prefix is
// only recognized on Windows.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	homeRelative := strings.HasPrefix(expanded, "~/") ||
		(runtime.GOOS == "windows" && strings.HasPrefix(expanded, `~\`))
	if expanded != "~" && !homeRelative {
		return expanded
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if expanded == "~" {
		return home
	}
	return filepath.Join(home, expanded[2:])
}
