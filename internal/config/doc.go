// Package config loads runtime configuration for the fsr terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in .yaml
//     or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   data directory
//	-b string   storage backend: sqlite, memory or redis
//	-r string   redis address (host:port)
//	-l string   log level: debug, info, warn, error
//
// # File schema
//
// Durations use timex.Duration, so they can be strings like "10s" or integer
// nanoseconds:
//
//	{
//	  "data_dir": "/var/lib/fsr",
//	  "backend": "sqlite",
//	  "sqlite_path": "fsr.db",
//	  "redis_addr": "127.0.0.1:6379",
//	  "redis_prefix": "fsrkeeper:",
//	  "max_attempts": 3,
//	  "lockout_duration": "10s",
//	  "log_level": "info",
//	  "log_file": "fsr.log"
//	}
//
// Relative sqlite_path and log_file values are resolved against data_dir.
// A log_file of "-" logs to stderr.
package config
