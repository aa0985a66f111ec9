package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fsrkeeper/internal/flagx"
	"github.com/dmitrijs2005/fsrkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk form. Only keys present in the file override the
// current values.
type fileConfig struct {
	DataDir         *string         `json:"data_dir" yaml:"data_dir"`
	Backend         *string         `json:"backend" yaml:"backend"`
	SQLitePath      *string         `json:"sqlite_path" yaml:"sqlite_path"`
	RedisAddr       *string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPrefix     *string         `json:"redis_prefix" yaml:"redis_prefix"`
	MaxAttempts     *int            `json:"max_attempts" yaml:"max_attempts"`
	LockoutDuration *timex.Duration `json:"lockout_duration" yaml:"lockout_duration"`
	LogLevel        *string         `json:"log_level" yaml:"log_level"`
	LogFile         *string         `json:"log_file" yaml:"log_file"`
}

// parseFile overlays cfg with the file named by -c/-config in args. Without
// that flag it does nothing.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	setString(&cfg.DataDir, fc.DataDir)
	setString(&cfg.Backend, fc.Backend)
	setString(&cfg.SQLitePath, fc.SQLitePath)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPrefix, fc.RedisPrefix)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFile, fc.LogFile)
	if fc.MaxAttempts != nil {
		cfg.MaxAttempts = *fc.MaxAttempts
	}
	if fc.LockoutDuration != nil {
		cfg.LockoutDuration = fc.LockoutDuration.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
