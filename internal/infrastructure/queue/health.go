package queue

import (
	"context"
	"fmt"

	"aksara-bali-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// BrokerHealth ping Redis broker của asynq
type BrokerHealth struct {
	client *redis.Client
}

func NewBrokerHealth(cfg config.RedisConfig) *BrokerHealth {
	return &BrokerHealth{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Host,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (h *BrokerHealth) Ping(ctx context.Context) error {
	if err := h.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (h *BrokerHealth) Close() error {
	return h.client.Close()
}
