// Package config loads newsdeck settings from a YAML file, a .env file and
// NEWSDECK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samvad-hq/newsdeck/internal/domain"
	"github.com/samvad-hq/newsdeck/internal/logger"
)

const envPrefix = "NEWSDECK"

// Config is the complete newsdeck configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api"`
	App    AppConfig    `mapstructure:"app"`
	Store  StoreConfig  `mapstructure:"store"`
	Share  ShareConfig  `mapstructure:"share"`
	Enrich EnrichConfig `mapstructure:"enrich"`
	Log    LogConfig    `mapstructure:"log"`
}

// APIConfig points at the news API.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Key     string        `mapstructure:"key"`
	Country string        `mapstructure:"country"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AppConfig holds UI defaults.
type AppConfig struct {
	DefaultCategory string `mapstructure:"default_category"`
}

// StoreConfig locates the bbolt file.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ShareConfig locates the share sinks file.
type ShareConfig struct {
	PublishersFile string `mapstructure:"publishers_file"`
}

// EnrichConfig controls page metadata enrichment.
type EnrichConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Workers      int           `mapstructure:"workers"`
	RequestDelay time.Duration `mapstructure:"request_delay"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// Load reads .env (if present), then cfgFile or the default search path,
// then the environment. A missing config file is not an error.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("newsdeck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "newsdeck"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can bind it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://newsapi.org/v2/")
	v.SetDefault("api.key", "")
	v.SetDefault("api.country", "us")
	v.SetDefault("api.timeout", time.Duration(0))

	v.SetDefault("app.default_category", domain.DefaultCategory)

	v.SetDefault("store.path", filepath.Join(dataDir(), "newsdeck.db"))

	v.SetDefault("share.publishers_file", "")

	v.SetDefault("enrich.enabled", false)
	v.SetDefault("enrich.workers", 10)
	v.SetDefault("enrich.request_delay", time.Duration(0))
	v.SetDefault("enrich.user_agent", "newsdeck/1.0")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(stateDir(), "newsdeck.log"))
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimSpace(c.API.BaseURL)
	c.API.Key = strings.TrimSpace(c.API.Key)
	c.API.Country = strings.ToLower(strings.TrimSpace(c.API.Country))
	c.App.DefaultCategory = strings.ToLower(strings.TrimSpace(c.App.DefaultCategory))
	c.Store.Path = expandHome(strings.TrimSpace(c.Store.Path))
	c.Share.PublishersFile = expandHome(strings.TrimSpace(c.Share.PublishersFile))
	c.Log.File = expandHome(strings.TrimSpace(c.Log.File))
}

// Validate checks the settings that would otherwise fail later and less
// clearly.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if !domain.IsCategory(c.App.DefaultCategory) {
		return fmt.Errorf("app.default_category %q is not one of %s",
			c.App.DefaultCategory, strings.Join(domain.Categories, ", "))
	}
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if c.Enrich.Workers < 0 {
		return errors.New("enrich.workers must not be negative")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

func dataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "newsdeck")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "newsdeck")
	}
	return "."
}

func stateDir() string {
	if d := os.Getenv("XDG_STATE_HOME"); d != "" {
		return filepath.Join(d, "newsdeck")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "newsdeck")
	}
	return "."
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
