package booking

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const submissionKeyPrefix = "bookingSubmission:"

// RedisSubmissionGuard claims idempotency keys with SETNX so that concurrent
// BFF instances agree on which request owns a user action.
type RedisSubmissionGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSubmissionGuard(client *redis.Client, ttl time.Duration) *RedisSubmissionGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisSubmissionGuard{client: client, ttl: ttl}
}

func (g *RedisSubmissionGuard) Claim(ctx context.Context, key string) (bool, error) {
	return g.client.SetNX(ctx, submissionKeyPrefix+key, time.Now().Unix(), g.ttl).Result()
}

func (g *RedisSubmissionGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, submissionKeyPrefix+key).Err()
}

// MemorySubmissionGuard is the single-process guard.
type MemorySubmissionGuard struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func NewMemorySubmissionGuard() *MemorySubmissionGuard {
	return &MemorySubmissionGuard{keys: make(map[string]struct{})}
}

func (g *MemorySubmissionGuard) Claim(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.keys[key]; ok {
		return false, nil
	}
	g.keys[key] = struct{}{}
	return true, nil
}

func (g *MemorySubmissionGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}
