package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"joyeria/internal/cart"
)

// RedisCartRepo keeps each cart as one JSON document with a sliding TTL.
type RedisCartRepo struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCartRepo(client *redis.Client, ttl time.Duration) *RedisCartRepo {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisCartRepo{client: client, baseTTL: ttl}
}

func (r *RedisCartRepo) LoadCart(ctx context.Context, cartID string) ([]cart.Line, bool, error) {
	data, err := r.client.Get(ctx, cartKey(cartID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	var lines []cart.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, false, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return lines, true, nil
}

func (r *RedisCartRepo) SaveCart(ctx context.Context, cartID string, lines []cart.Line) error {
	if lines == nil {
		lines = []cart.Line{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	jitter := time.Duration(rand.Intn(60)) * time.Minute
	if err := r.client.Set(ctx, cartKey(cartID), b, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}
