// Package config loads and validates the filevault client YAML
// configuration. It applies defaults so callers can rely on fully
// populated values.
package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds connection settings for the vault server.
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	Insecure       bool   `yaml:"insecure"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config mirrors the filevault.yaml schema.
type Config struct {
	Server      ServerConfig `yaml:"server"`
	Log         LogConfig    `yaml:"log"`
	StatePath   string       `yaml:"state_path"`
	DownloadDir string       `yaml:"download_dir"`
}

// Load reads a YAML config file, applies defaults, and validates it.
// An empty path yields the pure defaults, since the client is usable
// with flags alone.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, err
		}
	}
	applyDefaults(&c)
	if err := validate(&c); err != nil {
		return Config{}, err
	}
	c.StatePath = strings.TrimSpace(c.StatePath)
	c.DownloadDir = strings.TrimSpace(c.DownloadDir)
	return c, nil
}

// DefaultPath returns the conventional config file location, or "" when
// no user config directory is available.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "filevault", "filevault.yaml")
}

// DefaultStatePath returns where the durable session state lives when
// state_path is not configured.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "filevault-state.json"
	}
	return filepath.Join(dir, "filevault", "state.json")
}

func applyDefaults(c *Config) {
	if c.Server.Addr == "" {
		c.Server.Addr = "http://127.0.0.1:8080"
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.StatePath == "" {
		c.StatePath = DefaultStatePath()
	}
	if c.DownloadDir == "" {
		c.DownloadDir = "."
	}
}

func validate(c *Config) error {
	u, err := url.Parse(c.Server.Addr)
	if err != nil {
		return errors.New("server.addr is invalid")
	}
	if u.Host == "" && u.Path == "" {
		return errors.New("server.addr is invalid")
	}
	if c.Server.TimeoutSeconds < 1 || c.Server.TimeoutSeconds > 600 {
		return errors.New("server.timeout_seconds is invalid")
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		return errors.New("log.level is required")
	}
	return nil
}
