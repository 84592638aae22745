// Package config provides configuration loading for shiftvoice commands.
// Settings come from an optional YAML file with environment overrides;
// API keys are only ever read from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file omits a field.
const (
	DefaultListenAddr    = ":8090"
	DefaultLogLevel      = "info"
	DefaultDefaultPerson = "チュン"
	DefaultCacheDirName  = "cache"
	DefaultExportDirName = "exports"
	DefaultHotTTL        = 5 * time.Minute
)

var (
	ErrConfigFileUnreadable     = errors.New("config file is unreadable")
	ErrConfigFileUnmarshallable = errors.New("config file is unmarshallable")
	ErrRemoteURLMissing         = errors.New("dataset.remoteURL is missing in config")
	ErrDataDirMissing           = errors.New("dataDir is missing in config")
	ErrAPIKeyMissing            = errors.New("GOOGLE_API_KEY environment variable is required")
)

// Dataset configures where the schedule dataset lives.
type Dataset struct {
	// RemoteURL is the canonical read-only JSON document fetched when the
	// local cache is empty.
	RemoteURL string `yaml:"remoteURL"`

	// HotTTL bounds how long a decoded dataset stays in the in-memory cache.
	HotTTL time.Duration `yaml:"hotTTL"`
}

// Agent configures the conversational session declared at mount.
type Agent struct {
	Model    string `yaml:"model"`
	Voice    string `yaml:"voice"`
	Language string `yaml:"language"`
}

// Config is the root configuration for the shiftvoice service.
type Config struct {
	ListenAddr    string  `yaml:"listen"`
	LogLevel      string  `yaml:"logLevel"`
	DataDir       string  `yaml:"dataDir"`
	DefaultPerson string  `yaml:"defaultPerson"`
	Dataset       Dataset `yaml:"dataset"`
	Agent         Agent   `yaml:"agent"`

	// GoogleAPIKey authenticates the agent session. Environment only,
	// never persisted to the config file.
	GoogleAPIKey string `yaml:"-"`
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, and validates the result. An empty path loads defaults only.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ListenAddr:    DefaultListenAddr,
		LogLevel:      DefaultLogLevel,
		DefaultPerson: DefaultDefaultPerson,
		Dataset: Dataset{
			HotTTL: DefaultHotTTL,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigFileUnreadable, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigFileUnmarshallable, err)
		}
	}

	applyEnv(cfg)

	if cfg.Dataset.HotTTL <= 0 {
		cfg.Dataset.HotTTL = DefaultHotTTL
	}
	return cfg, nil
}

// applyEnv layers environment variables over file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SHIFTVOICE_LISTEN"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("SHIFTVOICE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SHIFTVOICE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SHIFTVOICE_DATASET_URL"); v != "" {
		cfg.Dataset.RemoteURL = v
	}
	if v := os.Getenv("SHIFTVOICE_DEFAULT_PERSON"); v != "" {
		cfg.DefaultPerson = v
	}
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
}

// Validate checks that the fields required to serve are present.
// The API key is checked separately because read-only commands
// (export, inspect) work without a session.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return ErrDataDirMissing
	}
	if c.Dataset.RemoteURL == "" {
		return ErrRemoteURLMissing
	}
	return nil
}

// ValidateSession checks the fields the agent session additionally needs.
func (c *Config) ValidateSession() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.GoogleAPIKey == "" {
		return ErrAPIKeyMissing
	}
	return nil
}
