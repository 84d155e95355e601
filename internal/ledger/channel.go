package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ChannelStore caches the id of the ledger log channel across requests. The
// channel id is the only state this service keeps between requests; the
// channel itself lives on the ledger.
type ChannelStore interface {
	// Get returns the cached channel id, or "" when none is cached.
	Get(ctx context.Context) (string, error)

	// Set caches a channel id.
	Set(ctx context.Context, topicID string) error
}

// InMemoryChannelStore is a mutex-guarded single-process ChannelStore.
type InMemoryChannelStore struct {
	mu      sync.RWMutex
	topicID string
}

// NewInMemoryChannelStore creates a ChannelStore seeded with topicID, which
// may be empty when no channel has been provisioned yet.
func NewInMemoryChannelStore(topicID string) *InMemoryChannelStore {
	return &InMemoryChannelStore{topicID: topicID}
}

// Get returns the cached channel id.
func (s *InMemoryChannelStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.topicID, nil
}

// Set caches a channel id.
func (s *InMemoryChannelStore) Set(_ context.Context, topicID string) error {
	s.mu.Lock()
	s.topicID = topicID
	s.mu.Unlock()
	return nil
}

// redisChannelKey is the Redis key holding the shared log channel id.
const redisChannelKey = "africhain:ledger:log_channel"

// RedisChannelStore shares the cached channel id across processes so only
// one deployment replica creates the channel.
type RedisChannelStore struct {
	client *redis.Client
}

// NewRedisChannelStore creates a Redis-backed ChannelStore.
func NewRedisChannelStore(client *redis.Client) *RedisChannelStore {
	return &RedisChannelStore{client: client}
}

// Get returns the cached channel id, or "" when the key is absent.
func (s *RedisChannelStore) Get(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, redisChannelKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Set caches a channel id with no expiry; log channels are permanent.
func (s *RedisChannelStore) Set(ctx context.Context, topicID string) error {
	return s.client.Set(ctx, redisChannelKey, topicID, 0).Err()
}
