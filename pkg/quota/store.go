package quota

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists the per-day ledger.
type Store interface {
	// Used returns the units recorded for day.
	Used(ctx context.Context, day string) (int, error)
	// Add records units for day and returns the new total.
	Add(ctx context.Context, day string, units int) (int, error)
	// Set overwrites the total for day.
	Set(ctx context.Context, day string, units int) error
}

// ledgerTTL keeps a day's key around long enough for late readers after the
// reset, then lets Redis drop it.
const ledgerTTL = 48 * time.Hour

// RedisStore shares the ledger between pipeline processes through Redis.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed ledger.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

func (s *RedisStore) Used(ctx context.Context, day string) (int, error) {
	used, err := s.redis.Get(ctx, RedisKeyPrefix+day).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get quota used: %w", err)
	}
	return used, nil
}

func (s *RedisStore) Add(ctx context.Context, day string, units int) (int, error) {
	key := RedisKeyPrefix + day

	pipe := s.redis.TxPipeline()
	incr := pipe.IncrBy(ctx, key, int64(units))
	pipe.Expire(ctx, key, ledgerTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record quota units: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Set(ctx context.Context, day string, units int) error {
	if err := s.redis.Set(ctx, RedisKeyPrefix+day, units, ledgerTTL).Err(); err != nil {
		return fmt.Errorf("set quota used: %w", err)
	}
	return nil
}

// MemoryStore keeps the ledger for the lifetime of the process.
type MemoryStore struct {
	mu   sync.Mutex
	used map[string]int
}

// NewMemoryStore creates an empty in-process ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{used: make(map[string]int)}
}

func (s *MemoryStore) Used(_ context.Context, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used[day], nil
}

func (s *MemoryStore) Add(_ context.Context, day string, units int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[day] += units
	return s.used[day], nil
}

func (s *MemoryStore) Set(_ context.Context, day string, units int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.used[day] = units
	return nil
}
