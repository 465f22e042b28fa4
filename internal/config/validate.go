// internal/config/validate.go
package config

import (
	"fmt"
	"path/filepath"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// Server validation
	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Sprintf("server.port: must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		errs = append(errs, fmt.Sprintf("server.log_level: must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// Browser validation
	if c.Browser.NavTimeout < 0 {
		errs = append(errs, "browser.nav_timeout: must not be negative")
	}
	if c.Browser.StepDelay < 0 {
		errs = append(errs, "browser.step_delay: must not be negative")
	}

	// Files validation
	for i, root := range c.Files.AllowedRoots {
		if root == "" || !filepath.IsAbs(root) {
			errs = append(errs, fmt.Sprintf("files.allowed_roots[%d]: must be an absolute path, got %q", i, root))
		}
	}
	if _, err := c.Files.MoveMode(); err != nil {
		errs = append(errs, fmt.Sprintf("files.move_permissions: %v", err))
	}

	return errs
}
