package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"storyhive/internal/cache"

	"github.com/redis/go-redis/v9"
)

// TokenStore persists the session token between process runs, keyed by a
// client identifier. It is the moral equivalent of browser local storage.
type TokenStore interface {
	Save(ctx context.Context, clientID, token string, ttl time.Duration) error
	Load(ctx context.Context, clientID string) (string, error)
	Clear(ctx context.Context, clientID string) error
}

// redisTokenStore persists tokens in Redis.
type redisTokenStore struct{}

// NewRedisTokenStore returns a TokenStore backed by the shared Redis client.
func NewRedisTokenStore() TokenStore {
	return &redisTokenStore{}
}

func (s *redisTokenStore) Save(ctx context.Context, clientID, token string, ttl time.Duration) error {
	c := cache.GetClient()
	if c == nil {
		return errors.New("token store unavailable: redis not connected")
	}
	return c.Set(ctx, cache.SessionTokenKey(clientID), token, ttl).Err()
}

func (s *redisTokenStore) Load(ctx context.Context, clientID string) (string, error) {
	c := cache.GetClient()
	if c == nil {
		return "", nil
	}
	token, err := c.Get(ctx, cache.SessionTokenKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *redisTokenStore) Clear(ctx context.Context, clientID string) error {
	c := cache.GetClient()
	if c == nil {
		return nil
	}
	return c.Del(ctx, cache.SessionTokenKey(clientID)).Err()
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// memoryTokenStore is an in-process TokenStore for tests and for running
// without Redis.
type memoryTokenStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryTokenStore returns an in-memory TokenStore.
func NewMemoryTokenStore() TokenStore {
	return &memoryTokenStore{entries: make(map[string]memoryEntry)}
}

func (s *memoryTokenStore) Save(_ context.Context, clientID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[clientID] = memoryEntry{token: token, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *memoryTokenStore) Load(_ context.Context, clientID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[clientID]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, clientID)
		return "", nil
	}
	return entry.token, nil
}

func (s *memoryTokenStore) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, clientID)
	return nil
}
