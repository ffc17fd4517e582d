package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/RaikyD/orders-intake-service/internal/domain"
)

// RedisOrderRepository keeps each order as one JSON value under "<prefix>:<id>".
// A single SET is atomic, and decimals are serialized as exact strings.
type RedisOrderRepository struct {
	client *redis.Client
	prefix string
}

var _ OrderRepo = (*RedisOrderRepository)(nil)

func NewRedisOrderRepository(client *redis.Client, prefix string) *RedisOrderRepository {
	return &RedisOrderRepository{client: client, prefix: prefix}
}

func (r *RedisOrderRepository) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *RedisOrderRepository) PutOrder(ctx context.Context, o domain.Order) error {
	b, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}
	if err := r.client.Set(ctx, r.key(o.ID), b, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisOrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var o domain.Order
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return &o, nil
}
