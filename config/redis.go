package config

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// OpenRedis connects the task queue client and checks it with a PING.
func OpenRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	redisConf := cfg.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     redisConf.Addr,
		Password: redisConf.Password,
		DB:       redisConf.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return client, nil
}
