// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the API root used when none is configured.
const DefaultAPIURL = "http://localhost:8000/api/v1"

// DefaultMaxPhotos is the per-room photo ceiling offered by the upload step.
const DefaultMaxPhotos = 10

// Config holds all configuration values for inspectr.
type Config struct {
	APIURL         string        `mapstructure:"api_url" yaml:"api_url"`
	WebURL         string        `mapstructure:"web_url" yaml:"web_url"`
	Token          string        `mapstructure:"token" yaml:"token,omitempty"`
	APITimeout     time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	DataDir        string        `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel       string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string        `mapstructure:"log_file" yaml:"log_file"`
	MaxPhotos      int           `mapstructure:"max_photos" yaml:"max_photos"`
	CaptureCommand string        `mapstructure:"capture_command" yaml:"capture_command"`
	CaptureTimeout time.Duration `mapstructure:"capture_timeout" yaml:"capture_timeout"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// keys lists every config key with its environment variable.
var keys = map[string]string{
	"api_url":         "INSPECTR_API_URL",
	"web_url":         "INSPECTR_WEB_URL",
	"token":           "INSPECTR_TOKEN",
	"api_timeout":     "INSPECTR_API_TIMEOUT",
	"data_dir":        "INSPECTR_DATA_DIR",
	"log_level":       "INSPECTR_LOG_LEVEL",
	"log_file":        "INSPECTR_LOG_FILE",
	"max_photos":      "INSPECTR_MAX_PHOTOS",
	"capture_command": "INSPECTR_CAPTURE_COMMAND",
	"capture_timeout": "INSPECTR_CAPTURE_TIMEOUT",
	"user_agent":      "INSPECTR_USER_AGENT",
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	return load(viper.New())
}

// LoadWith is Load with a caller-owned viper instance, so commands can bind
// their flags before loading.
func LoadWith(v *viper.Viper) (*Config, error) {
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigType("yaml")
	v.SetConfigName("inspectr")

	// api_timeout 0 means the HTTP client's default behaviour (no deadline)
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("web_url", "")
	v.SetDefault("token", "")
	v.SetDefault("api_timeout", time.Duration(0))
	v.SetDefault("data_dir", ".inspectr")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("max_photos", DefaultMaxPhotos)
	v.SetDefault("capture_command", "")
	v.SetDefault("capture_timeout", 30*time.Second)
	v.SetDefault("user_agent", "")

	v.SetEnvPrefix("INSPECTR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("api_url must not be empty")
	}
	if c.MaxPhotos <= 0 {
		return fmt.Errorf("max_photos must be > 0, got %d", c.MaxPhotos)
	}
	if c.APITimeout < 0 {
		return fmt.Errorf("api_timeout must be >= 0")
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/inspectr/inspectr.yml or $XDG_CONFIG_HOME/inspectr/inspectr.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "inspectr", "inspectr.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "inspectr", "inspectr.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "inspectr.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

// write marshals cfg to path. The file may carry an API token, so it is
// readable by the owner only.
func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
