package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"

	// LogToStderr as LogFile sends logs to stderr instead of a file.
	LogToStderr = "-"
)

// Config holds runtime settings for the fsr client.
type Config struct {
	DataDir         string        `validate:"required"`
	Backend         string        `validate:"oneof=sqlite memory redis"`
	SQLitePath      string        `validate:"required_if=Backend sqlite"`
	RedisAddr       string        `validate:"required_if=Backend redis"`
	RedisPrefix     string
	MaxAttempts     int           `validate:"min=1"`
	LockoutDuration time.Duration `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=debug info warn warning error"`
	LogFile         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = defaultDataDir()
	c.Backend = BackendSQLite
	c.SQLitePath = "fsr.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "fsrkeeper:"
	c.MaxAttempts = 3
	c.LockoutDuration = 10 * time.Second
	c.LogLevel = "info"
	c.LogFile = "fsr.log"
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "fsrkeeper")
	}
	return ".fsrkeeper"
}

// Load builds a Config from defaults, the optional config file and the flags
// found in args (usually os.Args[1:]). Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DatabasePath is SQLitePath resolved against DataDir.
func (c *Config) DatabasePath() string {
	return c.resolve(c.SQLitePath)
}

// LogPath is LogFile resolved against DataDir, or "" for stderr.
func (c *Config) LogPath() string {
	if c.LogFile == "" || c.LogFile == LogToStderr {
		return ""
	}
	return c.resolve(c.LogFile)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(c.DataDir, p)
}
