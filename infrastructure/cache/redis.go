package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-paddock/internal/ports"
)

// DefaultRedisPrefix namespaces keys written by RedisStore.
const DefaultRedisPrefix = "paddock:"

// clearBatch is the number of keys scanned and deleted per round trip.
const clearBatch = 100

// RedisStore is a CacheStore backed by Redis so that several processes can
// share computed reports.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore wraps client. Every key is stored under prefix; an empty
// prefix uses DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisStoreFromURL parses a redis:// URL, checks connectivity, and
// returns a store using it.
func NewRedisStoreFromURL(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, ports.NewConfigError("redis_url", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, ports.NewCacheError("", "ping", classify(err))
	}
	return NewRedisStore(client, prefix), nil
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

// Get returns the value stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ports.NewCacheError(key, "get", classify(err))
	}
	return value, true, nil
}

// Set stores value with the given expiration; zero means no expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	if err := s.client.Set(ctx, s.key(key), value, expiration).Err(); err != nil {
		return ports.NewCacheError(key, "set", classify(err))
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return ports.NewCacheError(key, "delete", classify(err))
	}
	return nil
}

// Clear removes every key under the store's prefix. Keys of other
// applications sharing the database are left alone.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", clearBatch).Iterator()
	batch := make([]string, 0, clearBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == clearBatch {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return ports.NewCacheError(s.prefix+"*", "clear", classify(err))
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return ports.NewCacheError(s.prefix+"*", "clear", classify(err))
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return ports.NewCacheError(s.prefix+"*", "clear", classify(err))
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// classify maps transport failures onto the retryable port errors.
func classify(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ports.ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Errorf("%w: %v", ports.ErrTimeout, err)
	case errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", ports.ErrServiceUnavailable, err)
	default:
		return err
	}
}

var _ ports.CacheStore = (*RedisStore)(nil)
