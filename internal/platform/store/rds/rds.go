// Package rds provides the redis client backing dedup keys
package rds

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures redis connectivity
type Config struct {
	Addr     string
	DB       int
	Password string
}

// RDS wraps a redis client
type RDS struct {
	rdb *redis.Client
}

const pingTimeout = 5 * time.Second

// Open dials redis and verifies the connection with a bounded ping
func Open(ctx context.Context, cfg Config) (*RDS, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("rds: ping %s: %w", cfg.Addr, err)
	}
	return &RDS{rdb: rdb}, nil
}

// SetNX stores value under key only when absent, with expiry
// it reports true when the key was newly set
func (r *RDS) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, key, value, ttl).Result()
}

// Get returns the value under key, empty when absent
func (r *RDS) Get(ctx context.Context, key string) (string, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return v, err
}

// Del removes keys
func (r *RDS) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// Expire resets the ttl on key
func (r *RDS) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.rdb.Expire(ctx, key, ttl).Err()
}

// Ping reports connectivity
func (r *RDS) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close closes the client
func (r *RDS) Close() error { return r.rdb.Close() }
