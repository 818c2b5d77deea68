package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvClaudeDir overrides the Claude Code data directory
	EnvClaudeDir = "CLAUDE_DIR"
	// EnvConfigPath overrides the config file location
	EnvConfigPath = "CC_FI_CONFIG"
)

// Cache backends
const (
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
)

// Config is built once at startup and passed by value afterwards
type Config struct {
	ClaudeDir     string        `yaml:"claude_dir"`
	DedupStrategy string        `yaml:"dedup_strategy"`
	Cache         CacheConfig   `yaml:"cache"`
	Display       DisplayConfig `yaml:"display"`
	Search        SearchConfig  `yaml:"search"`
	Picker        PickerConfig  `yaml:"picker"`
}

// CacheConfig controls the session cache
type CacheConfig struct {
	Path       string `yaml:"path"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Backend    string `yaml:"backend"`
}

// TTL returns the cache time-to-live as a duration
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// DisplayConfig holds every layout tunable used by the formatter
type DisplayConfig struct {
	PreviewLength   int `yaml:"preview_length"`
	DetailLength    int `yaml:"detail_length"`
	ProjectWidth    int `yaml:"project_width"`
	PathWidth       int `yaml:"path_width"`
	TimeWidth       int `yaml:"time_width"`
	ColumnGap       int `yaml:"column_gap"`
	SafetyMargin    int `yaml:"safety_margin"`
	MinMessageWidth int `yaml:"min_message_width"`
	DefaultWidth    int `yaml:"default_width"`
}

// SearchConfig controls deep-search snippets
type SearchConfig struct {
	ContextChars int `yaml:"context_chars"`
	MaxSnippets  int `yaml:"max_snippets"`
}

// PickerConfig controls the interactive picker
type PickerConfig struct {
	Binary          string `yaml:"binary"`
	PreviewPercent  int    `yaml:"preview_percent"`
	SearchableLimit int    `yaml:"searchable_limit"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		ClaudeDir:     defaultClaudeDir(),
		DedupStrategy: string(StrategyBoth),
		Cache: CacheConfig{
			Path:       filepath.Join(os.TempDir(), "cc-fi-cache.json"),
			TTLSeconds: 30,
			Backend:    CacheBackendJSON,
		},
		Display: DisplayConfig{
			PreviewLength:   60,
			DetailLength:    200,
			ProjectWidth:    20,
			PathWidth:       45,
			TimeWidth:       16,
			ColumnGap:       2,
			SafetyMargin:    4,
			MinMessageWidth: 20,
			DefaultWidth:    120,
		},
		Search: SearchConfig{
			ContextChars: 60,
			MaxSnippets:  5,
		},
		Picker: PickerConfig{
			Binary:          "fzf",
			PreviewPercent:  50,
			SearchableLimit: 4000,
		},
	}
}

func defaultClaudeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}

// DefaultConfigPath returns the config file location, honoring CC_FI_CONFIG and XDG_CONFIG_HOME
func DefaultConfigPath() string {
	if v := strings.TrimSpace(os.Getenv(EnvConfigPath)); v != "" {
		return expandHome(v)
	}
	if v := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); v != "" {
		return filepath.Join(v, "cc-fi", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cc-fi", "config.yaml")
}

// LoadConfig overlays the YAML file at path and the environment onto the
// defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			LogDebug("Loaded config from %s", path)
		case errors.Is(err, os.ErrNotExist):
			LogDebug("No config file at %s, using defaults", path)
		default:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvClaudeDir)); v != "" {
		cfg.ClaudeDir = v
	}
	cfg.ClaudeDir = expandHome(cfg.ClaudeDir)
	cfg.Cache.Path = expandHome(cfg.Cache.Path)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ProjectsDir returns the directory holding per-project transcript folders
func (c Config) ProjectsDir() string {
	return filepath.Join(c.ClaudeDir, "projects")
}

// Validate rejects values the rest of the program cannot work with
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.ClaudeDir) == "":
		return errors.New("config: claude_dir must not be empty")
	case strings.TrimSpace(c.Cache.Path) == "":
		return errors.New("config: cache.path must not be empty")
	case c.Cache.TTLSeconds < 0:
		return fmt.Errorf("config: cache.ttl_seconds must be >= 0, got %d", c.Cache.TTLSeconds)
	case c.Cache.Backend != CacheBackendJSON && c.Cache.Backend != CacheBackendSQLite:
		return fmt.Errorf("config: unsupported cache.backend %q (supported: json, sqlite)", c.Cache.Backend)
	case c.Display.PreviewLength < 4 || c.Display.DetailLength < 4:
		return errors.New("config: display.preview_length and display.detail_length must be >= 4")
	case c.Display.ProjectWidth < 1 || c.Display.PathWidth < 1 || c.Display.TimeWidth < 1:
		return errors.New("config: display column widths must be positive")
	case c.Display.MinMessageWidth < 4:
		return errors.New("config: display.min_message_width must be >= 4")
	case c.Display.ColumnGap < 0 || c.Display.SafetyMargin < 0:
		return errors.New("config: display.column_gap and display.safety_margin must be >= 0")
	case c.Search.ContextChars < 0 || c.Search.MaxSnippets < 1:
		return errors.New("config: search.context_chars must be >= 0 and search.max_snippets >= 1")
	case c.Picker.PreviewPercent < 0 || c.Picker.PreviewPercent > 100:
		return fmt.Errorf("config: picker.preview_percent must be within 0-100, got %d", c.Picker.PreviewPercent)
	}
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}
