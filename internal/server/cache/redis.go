// Package cache holds the optional Redis-backed pieces of the server: a
// read-through snapshot cache and the session revocation list.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/redis/go-redis/v9"
)

type Redis struct {
	rdb *redis.Client
	log logging.Logger
}

func NewRedis(addr string, log logging.Logger) *Redis {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &Redis{rdb: rdb, log: log.With("component", "redis")}
}

func (c *Redis) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.log.Warn(ctx, "PING failed", "error", err)
		return err
	}
	return nil
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

// Get returns nil, nil on a miss.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug(ctx, "GET miss", "key", key)
		return nil, nil
	}
	if err != nil {
		c.log.Warn(ctx, "GET failed", "key", key, "error", err)
		return nil, err
	}
	c.log.Debug(ctx, "GET hit", "key", key, "bytes", len(b))
	return b, nil
}

// Set stores val. A zero ttl keeps the key forever.
func (c *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		c.log.Warn(ctx, "SET failed", "key", key, "error", err)
		return err
	}
	return nil
}

// SetNX stores val only when key is absent.
func (c *Redis) SetNX(ctx context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, val, ttl).Result()
	if err != nil {
		c.log.Warn(ctx, "SETNX failed", "key", key, "error", err)
		return false, err
	}
	return ok, nil
}

func (c *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		c.log.Warn(ctx, "EXISTS failed", "key", key, "error", err)
		return false, err
	}
	return n == 1, nil
}
