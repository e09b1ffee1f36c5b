package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Bag    BagConfig    `yaml:"bag"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	BaseURL           string        `yaml:"base_url"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
}

// BagConfig holds item bag limits
type BagConfig struct {
	DefaultRows int           `yaml:"default_rows"`
	DefaultCols int           `yaml:"default_cols"`
	MinSize     int           `yaml:"min_size"`
	MaxSize     int           `yaml:"max_size"`
	IdleTTL     time.Duration `yaml:"idle_ttl"` // 0 keeps bags until closed
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
	// DragEvents selects traced drag events: "all", "none" or event names.
	DragEvents []string `yaml:"drag_events"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    15 * time.Second,
		},
		Bag: BagConfig{
			DefaultRows: 5,
			DefaultCols: 5,
			MinSize:     1,
			MaxSize:     10,
			IdleTTL:     30 * time.Minute,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			DragEvents: []string{"none"},
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment variables override the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	if base := strings.TrimSpace(os.Getenv("BASE_URL")); base != "" {
		c.Server.BaseURL = base
	}
	if level, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = level
	}
	if format, ok := os.LookupEnv("LOG_FORMAT"); ok {
		c.Log.Format = format
	}
	return nil
}

// Validate checks bag limits and fills zero values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Bag.MinSize < 1 {
		c.Bag.MinSize = 1
	}
	if c.Bag.MaxSize < c.Bag.MinSize {
		return fmt.Errorf("bag max_size %d below min_size %d", c.Bag.MaxSize, c.Bag.MinSize)
	}
	c.Bag.DefaultRows = c.Bag.Clamp(c.Bag.DefaultRows)
	c.Bag.DefaultCols = c.Bag.Clamp(c.Bag.DefaultCols)
	return nil
}

// Clamp limits a grid dimension to [MinSize, MaxSize].
func (b BagConfig) Clamp(n int) int {
	if n < b.MinSize {
		return b.MinSize
	}
	if n > b.MaxSize {
		return b.MaxSize
	}
	return n
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
