// redis.go
package repository

import (
	"context"
	"fmt"

	"go-cubirds/config"

	"github.com/go-redis/redis/v8"
)

// NewRedis connects and pings. The caller owns the returned client.
func NewRedis(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
