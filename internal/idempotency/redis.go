package idempotency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "stock:processed:"

// RedisStore keeps processed order ids in redis so every stock-service
// replica shares the duplicate check. Entries expire; the transactional
// guard row remains the durable record.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Seen(ctx context.Context, orderID uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+orderID.String()).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Mark(ctx context.Context, orderID uuid.UUID) error {
	return s.client.SetNX(ctx, keyPrefix+orderID.String(), 1, s.ttl).Err()
}
