// internal/config/discover.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath names the environment variable that pins the config file.
const EnvConfigPath = "NASBOX_CONFIG"

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "nasbox", "config.toml")
}

// searchPaths lists the locations Discover checks after the environment variable.
func searchPaths() []string {
	return []string{
		"./config.toml",
		DefaultPath(),
		"/etc/nasbox/config.toml",
	}
}

// Discover finds the config file. Search order:
//  1. $NASBOX_CONFIG (must exist when set)
//  2. ./config.toml
//  3. $XDG_CONFIG_HOME/nasbox/config.toml
//  4. /etc/nasbox/config.toml
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfigPath, envPath, err)
		}
		return envPath, nil
	}

	paths := searchPaths()
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}

	return "", fmt.Errorf("config not found, checked: %s", strings.Join(paths, ", "))
}
