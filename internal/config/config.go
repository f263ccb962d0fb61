// Package config loads shopfront settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "shopfront.yaml"

type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout is a Go duration string. Empty means no timeout.
	Timeout string `yaml:"timeout"`
}

type StorageConfig struct {
	// Path of the SQLite file. ":memory:" keeps nothing between runs.
	Path string `yaml:"path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		API:     APIConfig{BaseURL: "http://localhost:8080"},
		Storage: StorageConfig{Path: "shopfront.db"},
		Server:  ServerConfig{Addr: "127.0.0.1:3000"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides values with SHOPFRONT_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SHOPFRONT_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SHOPFRONT_API_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("SHOPFRONT_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SHOPFRONT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SHOPFRONT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api.base_url %q: scheme must be http or https", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api.base_url %q: missing host", c.API.BaseURL)
	}
	if _, err := c.APITimeout(); err != nil {
		return err
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path must not be empty")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	return nil
}

func (c Config) APITimeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid api.timeout %q: %w", c.API.Timeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid api.timeout %q: must not be negative", c.API.Timeout)
	}
	return d, nil
}
