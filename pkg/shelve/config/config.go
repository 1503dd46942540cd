package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jamesainslie/shelve/pkg/shelve/summarize"
)

// SortConfig selects the classifiers and transfer mode.
type SortConfig struct {
	ByType bool `mapstructure:"by_type"`
	ByYear bool `mapstructure:"by_year"`
}

// AnalyzeConfig controls the optional PDF summaries.
type AnalyzeConfig struct {
	Oldest  bool   `mapstructure:"oldest"`
	Newest  bool   `mapstructure:"newest"`
	Context string `mapstructure:"context"`
}

// LLMConfig configures the completion endpoint.
type LLMConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// Config represents the application configuration.
type Config struct {
	OutputRoot string        `mapstructure:"output_root"`
	Sort       SortConfig    `mapstructure:"sort"`
	Move       bool          `mapstructure:"move"`
	Analyze    AnalyzeConfig `mapstructure:"analyze"`
	SkipDirs   []string      `mapstructure:"skip_dirs"`
	Output     string        `mapstructure:"output"`
	LLM        LLMConfig     `mapstructure:"llm"`
	Logging    LoggingConfig `mapstructure:"logging"`
}

// ErrEmptyOutputRoot is returned when output_root is blank or a path.
var ErrEmptyOutputRoot = errors.New("output_root must be a single folder name")

// NewViper returns a viper instance with shelve's defaults and
// environment bindings applied. Callers bind flags to it before Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", APIKeyEnv)

	v.SetDefault("output_root", DefaultOutputRoot)
	v.SetDefault("sort.by_type", true)
	v.SetDefault("sort.by_year", true)
	v.SetDefault("move", false)
	v.SetDefault("analyze.oldest", true)
	v.SetDefault("analyze.newest", true)
	v.SetDefault("analyze.context", "")
	v.SetDefault("skip_dirs", DefaultSkipDirs)
	v.SetDefault("output", DefaultOutputFormat)

	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", summarize.DefaultModel)
	v.SetDefault("llm.max_tokens", summarize.DefaultMaxTokens)
	v.SetDefault("llm.timeout", summarize.DefaultTimeout)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", DefaultLogMaxSize)
	v.SetDefault("logging.rotation.max_backups", DefaultLogMaxBackups)

	return v
}

// Load reads the config file (if any) into v and unmarshals the result.
// An explicit cfgFile must exist; the default search path may be empty.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	root := strings.TrimSpace(c.OutputRoot)
	if root == "" || root == "." || root == ".." || strings.ContainsAny(root, `/\`) {
		return fmt.Errorf("%w: %q", ErrEmptyOutputRoot, c.OutputRoot)
	}
	c.OutputRoot = root

	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = summarize.DefaultMaxTokens
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = summarize.DefaultTimeout
	}
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set.
// Missing files are skipped; it returns the files that were loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return loaded, fmt.Errorf("checking %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", p, err)
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// DotEnvPaths returns the .env files shelve consults, lowest precedence last.
func DotEnvPaths() []string {
	paths := []string{".env"}
	if dir, err := ConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, ".env"))
	}
	return paths
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "shelve"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "shelve"), nil
}

// ConfigFile returns the default config file path.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// StateDir returns $XDG_STATE_HOME/shelve/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "shelve")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "shelve.log")
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	configPath, err := ConfigFile()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# shelve configuration

# Folder created inside the source directory to hold organized files
output_root: %s

# Classifiers: by file extension and/or by creation year
sort:
  by_type: true
  by_year: true

# Move files instead of copying them
move: false

# Summarize the oldest/newest PDF in the source directory
analyze:
  oldest: true
  newest: true
  context: ""

# Directories skipped when summing tree sizes
skip_dirs:
  - __pycache__
  - .cache

# Report format: pretty, plain, table, json, yaml
output: %s

# Completion endpoint. The API key may also come from %s or a .env file.
llm:
  base_url: ""
  model: %s
  max_tokens: %d
  timeout: %s

logging:
  # Log level: debug, info, warn, error
  level: info
  # Empty means $XDG_STATE_HOME/shelve/shelve.log
  path: ""
  rotation:
    max_size: %s
    max_backups: %d
`, DefaultOutputRoot, DefaultOutputFormat, APIKeyEnv, summarize.DefaultModel, summarize.DefaultMaxTokens,
		summarize.DefaultTimeout, DefaultLogMaxSize, DefaultLogMaxBackups)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}
