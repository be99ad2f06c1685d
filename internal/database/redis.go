package database

import (
	"context"
	"log"

	"github.com/cashwise/backend/internal/config"
	"github.com/go-redis/redis/v8"
)

// InitRedis initializes the Redis client. A nil client means Redis is
// unavailable and dependent features run degraded.
func InitRedis(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection failed, continuing without Redis: %v", err)
		return nil
	}

	log.Println("Redis connection established")
	return rdb
}
