// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Browser  BrowserConfig  `toml:"browser"`
	Files    FilesConfig    `toml:"files"`
}

type ServerConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	LogLevel    string   `toml:"log_level"`
	StaticDir   string   `toml:"static_dir"`
	CORSOrigins []string `toml:"cors_origins"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// BrowserConfig controls the headless browser that submits magnet links.
type BrowserConfig struct {
	Enabled    bool            `toml:"enabled"`
	Headed     bool            `toml:"headed"`  // show the browser window
	Install    bool            `toml:"install"` // download the browser driver on startup
	NavTimeout time.Duration   `toml:"nav_timeout"`
	StepDelay  time.Duration   `toml:"step_delay"`
	Selectors  SelectorsConfig `toml:"selectors"`
}

// SelectorsConfig overrides the CSS selectors of the download manager UI.
// Empty fields keep the built-in defaults.
type SelectorsConfig struct {
	NewTask        string `toml:"new_task"`
	Dialog         string `toml:"dialog"`
	Input          string `toml:"input"`
	ParseButton    string `toml:"parse_button"`
	DownloadButton string `toml:"download_button"`
}

// FilesConfig controls the filesystem maintenance endpoints.
type FilesConfig struct {
	AllowedRoots    []string `toml:"allowed_roots"`
	LockDir         string   `toml:"lock_dir"`
	DefaultPrefix   string   `toml:"default_prefix"`
	MovePermissions string   `toml:"move_permissions"` // octal, e.g. "0777"; empty leaves modes alone
}

// MoveMode parses MovePermissions. It returns 0 when unset.
func (f FilesConfig) MoveMode() (os.FileMode, error) {
	if f.MovePermissions == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(f.MovePermissions, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal permissions %q", f.MovePermissions)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("permissions %q out of range", f.MovePermissions)
	}
	return os.FileMode(v), nil
}

// Load reads, parses and validates the configuration file.
// Unresolved environment variables and validation failures are reported together
// as a *ConfigError.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{
		Path:    path,
		Missing: missing,
		Errors:  cfg.Validate(),
	}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, skipping validation
// and ignoring unresolved environment variables.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, missing, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/nasbox.db"
	}
	if c.Files.LockDir == "" {
		c.Files.LockDir = "./data/locks"
	}
	if c.Files.DefaultPrefix == "" {
		c.Files.DefaultPrefix = "NewFile_"
	}
	if c.Browser.NavTimeout == 0 {
		c.Browser.NavTimeout = 10 * time.Second
	}
	if c.Browser.StepDelay == 0 {
		c.Browser.StepDelay = time.Second
	}
}

// envVarPattern matches ${NAME}, ${NAME:-default} and ${NAME:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment variable references in content.
// Unresolved references are left as-is and returned in missing; for the :? form the
// entry carries the message ("NAME: message"). Comment lines are left untouched.
func substituteEnvVars(content string) (string, []string) {
	var missing []string

	lines := strings.SplitAfter(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines[i] = substituteLine(line, &missing)
	}
	return strings.Join(lines, ""), missing
}

func substituteLine(line string, missing *[]string) string {
	return envVarPattern.ReplaceAllStringFunc(line, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case ":-":
			if ok && value != "" {
				return value
			}
			return arg
		case ":?":
			if ok && value != "" {
				return value
			}
			*missing = append(*missing, fmt.Sprintf("%s: %s", name, arg))
			return match
		default:
			if ok {
				return value
			}
			*missing = append(*missing, name)
			return match
		}
	})
}
