package db

import (
	"context"
	"time"

	"taskhub/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

// ConnectRedis dials Redis and returns a client, or nil when addr is
// empty or the server is unreachable. Callers treat a nil client as
// "no Redis": the task cache degrades to always-miss and the rate
// limiter fails open, so the server stays available without it.
func ConnectRedis(addr, password string, dbNum int) *redis.Client {
	if addr == "" {
		logger.Warn("REDIS_ADDR not set, running without redis")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbNum,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, running without redis", "addr", addr, "error", err)
		return nil
	}

	logger.Info("redis connected", "addr", addr)
	return client
}
