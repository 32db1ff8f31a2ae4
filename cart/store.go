package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store persists the full line set of one owner's cart under a fixed key.
// Writes always overwrite the whole value; there are no partial writes.
type Store interface {
	Load(ctx context.Context, owner string) ([]Line, error)
	Save(ctx context.Context, owner string, lines []Line) error
	Delete(ctx context.Context, owner string) error
}

const (
	keyPrefix = "cart:"

	// Anonymous session carts expire; user carts are kept until cleared.
	anonymousCartTTL = 30 * 24 * time.Hour
)

// RedisStore keeps each cart as one JSON value under cart:{owner}.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, owner string) ([]Line, error) {
	data, err := s.client.Get(ctx, keyPrefix+owner).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart %s: %v", owner, err)
	}
	return decodeLines(data)
}

func (s *RedisStore) Save(ctx context.Context, owner string, lines []Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart %s: %v", owner, err)
	}

	var ttl time.Duration
	if strings.HasPrefix(owner, "session:") {
		ttl = anonymousCartTTL
	}

	if err := s.client.Set(ctx, keyPrefix+owner, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart %s: %v", owner, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, keyPrefix+owner).Err(); err != nil {
		return fmt.Errorf("failed to delete cart %s: %v", owner, err)
	}
	return nil
}

func decodeLines(data []byte) ([]Line, error) {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unreadable cart data: %v", err)
	}
	return lines, nil
}

// MemoryStore is a map-backed Store for tests and for running the API
// without Redis. Values are kept serialized so load/save behaves exactly
// like the Redis store, including its handling of unreadable data.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, owner string) ([]Line, error) {
	s.mu.RLock()
	data, ok := s.carts[owner]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeLines(data)
}

func (s *MemoryStore) Save(_ context.Context, owner string, lines []Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart %s: %v", owner, err)
	}
	s.mu.Lock()
	s.carts[owner] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, owner string) error {
	s.mu.Lock()
	delete(s.carts, owner)
	s.mu.Unlock()
	return nil
}

// SeedRaw stores an arbitrary blob under an owner key, bypassing
// serialization. Lets tests exercise recovery from corrupt stored state.
func (s *MemoryStore) SeedRaw(owner string, data []byte) {
	s.mu.Lock()
	s.carts[owner] = data
	s.mu.Unlock()
}
