package cache

import (
	"context"
	"errors"

	"go-outlook-starter/core/config"
	"go-outlook-starter/core/constants"
	"go-outlook-starter/core/logger"

	"github.com/redis/go-redis/v9"
)

// Cache stores short-lived OAuth state nonces. A nonce is written when a
// login URL is issued and consumed exactly once by the callback.
type Cache interface {
	SaveOAuthState(ctx context.Context, state string) error
	ConsumeOAuthState(ctx context.Context, state string) (bool, error)
	Close() error
}

type redisCache struct {
	client *redis.Client
}

func NewCache(cfg config.RedisConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	logger.Info("Redis cache initialized", "addr", cfg.Addr, "db", cfg.DB)
	return &redisCache{client: client}, nil
}

func (c *redisCache) SaveOAuthState(ctx context.Context, state string) error {
	key := constants.RedisKeyOAuthState + state
	if err := c.client.Set(ctx, key, "1", constants.OAuthStateTTL).Err(); err != nil {
		logger.Error("Cache:SaveOAuthState:Error", "error", err)
		return err
	}
	return nil
}

// ConsumeOAuthState deletes the nonce and reports whether it existed.
func (c *redisCache) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	key := constants.RedisKeyOAuthState + state
	deleted, err := c.client.Del(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error("Cache:ConsumeOAuthState:Error", "error", err)
		return false, err
	}
	return deleted > 0, nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
