package checks

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/healthkit/health"
)

// RedisPinger is satisfied by *redis.Client, *redis.ClusterClient and
// *redis.Ring.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisChecker sends PING and expects PONG.
type RedisChecker struct {
	client RedisPinger
}

// Redis checks client with PING.
func Redis(client RedisPinger) *RedisChecker {
	return &RedisChecker{client: client}
}

// Check pings the server.
func (r *RedisChecker) Check(ctx context.Context) error {
	reply, err := r.client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if reply != "PONG" {
		return fmt.Errorf("%w: %q", ErrUnexpectedReply, reply)
	}
	return nil
}

// NewRedisClient creates a client for addr without connecting.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

var (
	_ health.Checker = (*RedisChecker)(nil)
	_ RedisPinger    = (*redis.Client)(nil)
)
