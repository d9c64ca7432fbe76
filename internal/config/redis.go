package config

// This file defines the Redis client constructor.  Redis backs the seat
// lock store (the atomic gate that decides which requester gets a seat)
// and the distributed rate limiter.  Unlike a cache, the lock store is
// mandatory: callers must treat a nil client as a startup failure rather
// than degrading gracefully.

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from the loaded Config and
// verifies connectivity with a short ping.  It returns nil when the server
// cannot be reached so the caller can decide whether the dependency is
// fatal (seat locks) or optional (rate limiting).
func NewRedisClient(cfg Config) *redis.Client {
	var tlsConf *tls.Config
	if cfg.RedisTLS {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}
