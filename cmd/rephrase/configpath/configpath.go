// Package configpath resolves which rephrase config file to load.
package configpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// EnvConfig names an explicit config file path.
const EnvConfig = "REPHRASE_CONFIG"

// LocalFile is looked up in the working directory.
const LocalFile = "rephrase.toml"

// ResolveConfigPath returns the config file to load. An explicit path must
// exist. Otherwise REPHRASE_CONFIG, ./rephrase.toml and ~/.rephrase/config.toml
// are tried in order; an empty result means "use defaults".
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("config file %s (from %s): %w", p, EnvConfig, err)
		}
		return p, nil
	}

	candidates := []string{LocalFile}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".rephrase", "config.toml"))
	}

	for _, c := range candidates {
		_, err := os.Stat(c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file %s: %w", c, err)
		}
	}

	return "", nil
}
