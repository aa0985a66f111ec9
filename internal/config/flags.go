package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/fsrkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   data directory
//	-b string   storage backend
//	-r string   redis address
//	-l string   log level
//
// args are filtered with flagx.FilterArgs first so flags owned by other
// components do not cause errors here.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-b", "-r", "-l"})

	fs := flag.NewFlagSet("fsr", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.Backend, "b", cfg.Backend, "storage backend: sqlite, memory or redis")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
