package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisPresence tracks online users as expiring keys; every authenticated
// request refreshes the key, so a user goes offline ttl after the last request.
type RedisPresence struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPresence(rdb *redis.Client, prefix string, ttl time.Duration) *RedisPresence {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisPresence{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (p *RedisPresence) key(id uuid.UUID) string {
	return p.prefix + ":online:" + id.String()
}

func (p *RedisPresence) Touch(ctx context.Context, userID uuid.UUID) error {
	return p.rdb.Set(ctx, p.key(userID), time.Now().UTC().Unix(), p.ttl).Err()
}

// Clear marks the user offline right away, e.g. on logout.
func (p *RedisPresence) Clear(ctx context.Context, userID uuid.UUID) error {
	return p.rdb.Del(ctx, p.key(userID)).Err()
}

func (p *RedisPresence) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := p.rdb.Exists(ctx, p.key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
