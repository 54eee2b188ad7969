// Package config holds the application configuration, loaded from a TOML or
// YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the complete application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Execute ExecuteConfig `toml:"execute" yaml:"execute"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host         string   `toml:"host" yaml:"host"`
	Port         int      `toml:"port" yaml:"port"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// ExecuteConfig bounds a single program run.
type ExecuteConfig struct {
	Timeout        Duration `toml:"timeout" yaml:"timeout"`
	StepLimit      int      `toml:"step_limit" yaml:"step_limit"`
	MaxSourceBytes int      `toml:"max_source_bytes" yaml:"max_source_bytes"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Duration wraps time.Duration so config files can write "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration string from a YAML scalar.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a TOML or YAML file, chosen by extension,
// applies defaults for missing fields, and then applies BLOCKRUN_*
// environment overrides.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 10 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 15 * time.Second
	}

	if c.Execute.Timeout.Duration == 0 {
		c.Execute.Timeout.Duration = 5 * time.Second
	}
	if c.Execute.StepLimit == 0 {
		c.Execute.StepLimit = 1_000_000
	}
	if c.Execute.MaxSourceBytes == 0 {
		c.Execute.MaxSourceBytes = 64 * 1024
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// applyEnvOverrides lets the environment win over the file for the settings
// that vary between deployments.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BLOCKRUN_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("BLOCKRUN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("BLOCKRUN_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BLOCKRUN_STEP_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			c.Execute.StepLimit = limit
		}
	}
	if v := os.Getenv("BLOCKRUN_EXECUTE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Execute.Timeout.Duration = d
		}
	}
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
