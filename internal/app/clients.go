package app

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/greenscape-backend/internal/clients/redis"
	"github.com/yungbote/greenscape-backend/internal/platform/cache"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type Clients struct {
	Redis        *goredis.Client
	CatalogCache cache.CatalogCache
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	rdb, err := redis.NewClient(log, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	var catalogCache cache.CatalogCache
	if rdb != nil {
		ttl := time.Duration(cfg.Redis.CatalogTTLSeconds) * time.Second
		catalogCache = cache.NewCatalogCache(rdb, log, cfg.Redis.KeyPrefix, ttl)
	}

	return Clients{Redis: rdb, CatalogCache: catalogCache}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
