package cache

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caches lookups in Redis, letting multiple instances share
// one cache. Values carry the store's TTL via SET EX.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix (default "bistrohunter:cache").
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

// NewRedis creates a RedisStore on top of the given client.
func NewRedis(rdb *redis.Client, ttl time.Duration, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "bistrohunter:cache",
		ttl:    ttl,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store. Redis errors are treated as misses so that a
// cache outage degrades to slower lookups instead of failed requests.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := s.rdb.Get(ctx, s.prefix+":"+key).Bytes()
	if err != nil {
		// redis.Nil and transport errors alike: nothing cached to use.
		return nil, false
	}
	return val, true
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.rdb.Set(ctx, s.prefix+":"+key, value, s.ttl).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
