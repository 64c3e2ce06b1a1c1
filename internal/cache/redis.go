package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ziadkadry99/dirpage/internal/directory"
)

// Key prefixes of the two payload namespaces kept in Redis.
const (
	DirectoryPrefix = "dirpage:directory:"
	RenderPrefix    = "dirpage:render:"
)

// RedisConfig holds connection settings for the Redis cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // defaults to DirectoryPrefix
}

// Redis is a Cache backed by Redis, storing payloads as JSON strings.
type Redis struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info("Redis connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return newRedisFromClient(client, cfg.Prefix, logger), nil
}

func newRedisFromClient(client *redis.Client, prefix string, logger *zap.Logger) *Redis {
	if prefix == "" {
		prefix = DirectoryPrefix
	}
	return &Redis{client: client, prefix: prefix, logger: logger}
}

func (c *Redis) Get(ctx context.Context, key string) (*directory.Payload, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var p directory.Payload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		c.logger.Error("Cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return &p, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, p *directory.Payload, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		c.logger.Error("Cache set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Redis) Close() error {
	return c.client.Close()
}
