// internal/config/error_test.go
package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError_Error_Empty(t *testing.T) {
	e := &ConfigError{Path: "/etc/nasbox/config.toml"}
	assert.Empty(t, e.Error())
	assert.False(t, e.HasErrors())
}

func TestConfigError_Error_MissingVars(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/nasbox/config.toml",
		Missing: []string{"NAS_ROOT", "DATA_DIR"},
	}
	got := e.Error()
	assert.True(t, strings.HasPrefix(got, "config /etc/nasbox/config.toml:"), got)
	assert.Contains(t, got, "missing environment variables: NAS_ROOT, DATA_DIR")
	assert.True(t, e.HasErrors())
}

func TestConfigError_Error_ValidationErrors(t *testing.T) {
	e := &ConfigError{
		Path:   "/etc/nasbox/config.toml",
		Errors: []string{"server.port: must be 1-65535", "files.move_permissions: bad"},
	}
	got := e.Error()
	assert.Contains(t, got, "validation failed:")
	assert.Contains(t, got, "  - server.port: must be 1-65535")
	assert.Contains(t, got, "  - files.move_permissions: bad")
	assert.NotContains(t, got, "missing environment variables")
}

func TestConfigError_Error_Both(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/nasbox/config.toml",
		Missing: []string{"NAS_ROOT"},
		Errors:  []string{"server.port: invalid"},
	}
	got := e.Error()
	missingAt := strings.Index(got, "missing environment variables")
	validationAt := strings.Index(got, "validation failed")
	assert.Positive(t, missingAt)
	assert.Greater(t, validationAt, missingAt, "missing variables are listed first")
}
