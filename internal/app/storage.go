package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/newtab/internal/config"
	"github.com/MrSnakeDoc/newtab/internal/kv"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/redis"
	"github.com/MrSnakeDoc/newtab/internal/store"
)

// OpenStorage opens the configured key-value backend. The redis client is
// returned as well (nil for other backends) so that callers can report on it.
func OpenStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (kv.Storage, *goredis.Client, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		log.Warn("memory storage selected, shortcuts are lost on exit")
		return kv.NewMemory(), nil, nil

	case config.BackendFile:
		s, err := kv.OpenFile(cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open file storage: %w", err)
		}
		return s, nil, nil

	case config.BackendSQLite:
		s, err := kv.OpenSQLite(cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return s, nil, nil

	case config.BackendRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return kv.NewRedis(client), client, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// OpenStore opens storage and loads the shortcut collection from it.
// The caller owns the returned storage and must close it.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*store.Store, kv.Storage, *goredis.Client, error) {
	storage, client, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	st := store.New(storage,
		store.WithLogger(log),
		store.WithFaviconService(cfg.FaviconService),
	)
	if err := st.Load(ctx); err != nil {
		_ = storage.Close()
		return nil, nil, nil, fmt.Errorf("load shortcuts: %w", err)
	}

	log.Info("shortcuts loaded",
		logger.String("backend", storage.Name()),
		logger.Int("count", st.Len()))
	return st, storage, client, nil
}
