package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	koanftoml "github.com/knadh/koanf/parsers/toml"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/radonlens/pkg/radon"
)

// Config holds all configuration options for radonlens.
type Config struct {
	// Radon tool settings
	Radon RadonConfig `koanf:"radon" toml:"radon" yaml:"radon" json:"radon"`

	// Filesystem watch settings
	Watch WatchConfig `koanf:"watch" toml:"watch" yaml:"watch" json:"watch"`

	// Logging settings
	Logging LoggingConfig `koanf:"logging" toml:"logging" yaml:"logging" json:"logging"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output" yaml:"output" json:"output"`
}

// RadonConfig locates and gates the radon executable.
type RadonConfig struct {
	Executable     string `koanf:"executable" toml:"executable" yaml:"executable" json:"executable"`
	Enable         bool   `koanf:"enable" toml:"enable" yaml:"enable" json:"enable"`
	InstallCommand string `koanf:"install_command" toml:"install_command" yaml:"install_command" json:"install_command"`
}

// WatchConfig controls the filesystem lifecycle source.
type WatchConfig struct {
	DebounceMS int      `koanf:"debounce_ms" toml:"debounce_ms" yaml:"debounce_ms" json:"debounce_ms"`
	Gitignore  bool     `koanf:"gitignore" toml:"gitignore" yaml:"gitignore" json:"gitignore"`
	Dirs       []string `koanf:"exclude_dirs" toml:"exclude_dirs" yaml:"exclude_dirs" json:"exclude_dirs"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `koanf:"level" toml:"level" yaml:"level" json:"level"`    // debug, info, warn, error
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format" yaml:"format" json:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color" yaml:"color" json:"color"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Radon: RadonConfig{
			Executable:     "radon",
			Enable:         true,
			InstallCommand: radon.DefaultInstallCommand,
		},
		Watch: WatchConfig{
			DebounceMS: 100,
			Gitignore:  true,
			Dirs: []string{
				".git",
				".venv",
				"venv",
				"__pycache__",
				".tox",
				"node_modules",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// parserFor picks the koanf parser for a config file by extension.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return koanfyaml.Parser()
	case ".json":
		return koanfjson.Parser()
	default:
		return koanftoml.Parser()
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, err
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched in order in every search directory.
var configNames = []string{
	"radonlens.toml",
	"radonlens.yaml",
	"radonlens.yml",
	"radonlens.json",
	".radonlens.toml",
	".radonlens.yaml",
	".radonlens.yml",
	".radonlens.json",
}

// DefaultPath is where a new config file is written.
const DefaultPath = "radonlens.toml"

// EnvPath names the environment variable that points at the config file.
const EnvPath = "RADONLENS_CONFIG"

// Find returns the first config file found under dir or its .radonlens directory.
func Find(dir string) (string, bool) {
	searchDirs := []string{dir, filepath.Join(dir, ".radonlens")}
	for _, d := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}
	}
	return "", false
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
// The returned path is empty when no file was found.
func LoadOrDefault() (*Config, string) {
	path, ok := Find(".")
	if !ok {
		return DefaultConfig(), ""
	}
	cfg, err := Load(path)
	if err != nil {
		return DefaultConfig(), ""
	}
	return cfg, path
}

// Validate checks values koanf cannot type-check.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q", c.Logging.Format)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative")
	}
	return nil
}

// Marshal encodes the config in the format implied by path's extension.
func (c *Config) Marshal(path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(c)
	case ".json":
		return json.MarshalIndent(c, "", "  ")
	default:
		return toml.Marshal(*c)
	}
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := c.Marshal(path)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// ShouldExclude reports whether path lies in an excluded directory.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Watch.Dirs {
		if strings.Contains(path, string(filepath.Separator)+dir+string(filepath.Separator)) ||
			strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
