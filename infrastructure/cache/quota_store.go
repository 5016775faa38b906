package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"viral-clips/domain/repository"

	"github.com/redis/go-redis/v9"
)

const quotaKeyPrefix = "quota"

// NewRedisClient dials Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisQuotaStore tracks per-caller daily quota units in Redis. Counters are
// keyed by (caller-hash, UTC date), incremented atomically with INCRBY, and
// expire shortly after the day boundary so the reset is implicit.
type RedisQuotaStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisQuotaStore(client *redis.Client) *RedisQuotaStore {
	return &RedisQuotaStore{client: client, now: time.Now}
}

func (s *RedisQuotaStore) Add(ctx context.Context, callerHash string, units int64) (int64, error) {
	key := s.key(callerHash)
	total, err := s.client.IncrBy(ctx, key, units).Result()
	if err != nil {
		return 0, fmt.Errorf("quota increment failed: %w", err)
	}
	if total == units {
		// First use today: expire the counter an hour past the UTC day
		// boundary so late readers still see the final figure.
		_ = s.client.ExpireAt(ctx, key, s.endOfDay().Add(time.Hour)).Err()
		_ = s.client.SAdd(ctx, s.indexKey(), callerHash).Err()
		_ = s.client.ExpireAt(ctx, s.indexKey(), s.endOfDay().Add(time.Hour)).Err()
	}
	return total, nil
}

func (s *RedisQuotaStore) UsedToday(ctx context.Context, callerHash string) (int64, error) {
	total, err := s.client.Get(ctx, s.key(callerHash)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("quota read failed: %w", err)
	}
	return total, nil
}

func (s *RedisQuotaStore) TotalToday(ctx context.Context) (int64, error) {
	hashes, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("quota index read failed: %w", err)
	}
	var total int64
	for _, h := range hashes {
		used, err := s.UsedToday(ctx, h)
		if err != nil {
			return 0, err
		}
		total += used
	}
	return total, nil
}

func (s *RedisQuotaStore) Reset(ctx context.Context, callerHash string) error {
	return s.client.Del(ctx, s.key(callerHash)).Err()
}

func (s *RedisQuotaStore) key(callerHash string) string {
	return fmt.Sprintf("%s:%s:%s", quotaKeyPrefix, callerHash, s.day())
}

func (s *RedisQuotaStore) indexKey() string {
	return fmt.Sprintf("%s:callers:%s", quotaKeyPrefix, s.day())
}

func (s *RedisQuotaStore) day() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *RedisQuotaStore) endOfDay() time.Time {
	return s.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}

// MemoryQuotaStore is the fallback when Redis is unconfigured. Same
// contract, one process only.
type MemoryQuotaStore struct {
	mu    sync.Mutex
	day   string
	usage map[string]int64
	now   func() time.Time
}

func NewMemoryQuotaStore() *MemoryQuotaStore {
	return &MemoryQuotaStore{usage: make(map[string]int64), now: time.Now}
}

func (s *MemoryQuotaStore) Add(_ context.Context, callerHash string, units int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollLocked()
	s.usage[callerHash] += units
	return s.usage[callerHash], nil
}

func (s *MemoryQuotaStore) UsedToday(_ context.Context, callerHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollLocked()
	return s.usage[callerHash], nil
}

func (s *MemoryQuotaStore) TotalToday(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollLocked()
	var total int64
	for _, v := range s.usage {
		total += v
	}
	return total, nil
}

func (s *MemoryQuotaStore) Reset(_ context.Context, callerHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.usage, callerHash)
	return nil
}

// rollLocked drops all counters when the UTC day changes.
func (s *MemoryQuotaStore) rollLocked() {
	today := s.now().UTC().Format("2006-01-02")
	if s.day != today {
		s.day = today
		s.usage = make(map[string]int64)
	}
}

var (
	_ repository.IQuotaStore = (*RedisQuotaStore)(nil)
	_ repository.IQuotaStore = (*MemoryQuotaStore)(nil)
)
