package db

import (
	"context"

	"SieveAPI/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RDB is nil when no Redis address is configured; callers treat that as
// "cache disabled".
var RDB *redis.Client

func InitRedis(addr string) {
	if addr == "" {
		logger.Info("redis_disabled", nil)
		return
	}
	RDB = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func PingRedis(ctx context.Context) error {
	if RDB == nil {
		return nil
	}
	return RDB.Ping(ctx).Err()
}
