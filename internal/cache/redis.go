// Package cache stores ranking responses in Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/school-locator/internal/models"
)

const keyPrefix = "school-locator:nearest"

// Key builds the cache key for a ranking of the given dataset version.
func Key(datasetVersion string, origin models.Location, length int) string {
	return fmt.Sprintf("%s:%s:%s:%s:%d", keyPrefix, datasetVersion,
		strconv.FormatFloat(origin.Lat, 'g', -1, 64),
		strconv.FormatFloat(origin.Lon, 'g', -1, 64),
		length)
}

// RedisCache is a byte cache with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis creates a client for addr. It does not contact the server.
func OpenRedis(addr, pass string, db int) *redis.Client {
	log.WithFields(log.Fields{"addr": addr, "db": db}).Debug("Opening redis client")
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// NewRedisCache wraps client. A non-positive ttl disables expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached value for key. A miss is not an error.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set stores value under key.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
