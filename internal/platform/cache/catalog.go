package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/greenscape-backend/internal/domain"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

// Client is the subset of *goredis.Client the catalog cache uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// CatalogCache holds a JSON snapshot of the full plant catalog.
type CatalogCache interface {
	// Get reports ok=false on a miss.
	Get(ctx context.Context) ([]*types.Plant, bool, error)
	Set(ctx context.Context, plants []*types.Plant) error
	Invalidate(ctx context.Context) error
}

const DefaultTTL = 5 * time.Minute

type catalogCache struct {
	client Client
	log    *logger.Logger
	key    string
	ttl    time.Duration
}

func NewCatalogCache(client Client, baseLog *logger.Logger, keyPrefix string, ttl time.Duration) CatalogCache {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = "greenscape"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &catalogCache{
		client: client,
		log:    baseLog.With("service", "CatalogCache"),
		key:    prefix + ":catalog:v1",
		ttl:    ttl,
	}
}

func (c *catalogCache) Get(ctx context.Context) ([]*types.Plant, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog cache get: %w", err)
	}
	var plants []*types.Plant
	if err := json.Unmarshal(raw, &plants); err != nil {
		// A corrupt entry is a miss; the next Set overwrites it.
		c.log.Warn("Discarding undecodable catalog snapshot", "error", err, "bytes", len(raw))
		return nil, false, nil
	}
	return plants, true, nil
}

func (c *catalogCache) Set(ctx context.Context, plants []*types.Plant) error {
	raw, err := json.Marshal(plants)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("catalog cache set: %w", err)
	}
	return nil
}

func (c *catalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("catalog cache invalidate: %w", err)
	}
	return nil
}
