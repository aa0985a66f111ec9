package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fsrkeeper/internal/config"
	"github.com/dmitrijs2005/fsrkeeper/internal/filex"
	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
	"github.com/redis/go-redis/v9"

	_ "modernc.org/sqlite"
)

// openBackend builds the store selected by cfg and returns it with a function
// that releases it.
func openBackend(ctx context.Context, cfg *config.Config) (storage.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return storage.NewMemoryBackend(), func() error { return nil }, nil

	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		return storage.NewRedisBackend(rdb, cfg.RedisPrefix), rdb.Close, nil

	case config.BackendSQLite:
		path := cfg.DatabasePath()
		if path != ":memory:" {
			if _, err := filex.EnsureDir(cfg.DataDir); err != nil {
				return nil, nil, err
			}
		}
		db, err := storage.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
