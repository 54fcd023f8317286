package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/hisab-api/internal/config"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to Redis. It returns nil, nil when no address is
// configured so callers can fall back to in-process implementations.
func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, log *logrus.Logger) (*redis.Client, error) {
	if cfg.Address == "" {
		log.Info("REDIS_ADDRESS not set; using in-process broker and locks")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 50,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	log.WithField("addr", cfg.Address).Info("connected to redis")
	return rdb, nil
}
