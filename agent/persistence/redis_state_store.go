package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStateStore is a Redis-based implementation of StateStore.
// Suitable for distributed deployments. Each document is a plain string key; a set
// indexes the saved conversation IDs.
type RedisStateStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStateStore creates a new Redis-based state store
func NewRedisStateStore(config StoreConfig) (*RedisStateStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
		PoolSize: config.Redis.PoolSize,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStateStoreFromClient(client, config.Redis.KeyPrefix, config.Redis.TTL), nil
}

// NewRedisStateStoreFromClient wraps an existing client.
func NewRedisStateStoreFromClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStateStore {
	if keyPrefix == "" {
		keyPrefix = "swarmflow:"
	}
	return &RedisStateStore{
		client:    client,
		keyPrefix: keyPrefix + "state:",
		ttl:       ttl,
	}
}

func (s *RedisStateStore) stateKey(conversationID string) string {
	return s.keyPrefix + "data:" + conversationID
}

func (s *RedisStateStore) indexKey() string {
	return s.keyPrefix + "index"
}

// Close closes the store
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

// Ping checks if the store is healthy
func (s *RedisStateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SaveState stores data and indexes the ID in one transaction
func (s *RedisStateStore) SaveState(ctx context.Context, conversationID string, data []byte) error {
	if err := ValidateConversationID(conversationID); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrInvalidInput
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.stateKey(conversationID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), conversationID)
	_, err := pipe.Exec(ctx)
	return err
}

// LoadState retrieves the saved document
func (s *RedisStateStore) LoadState(ctx context.Context, conversationID string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.stateKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DeleteState removes the saved document
func (s *RedisStateStore) DeleteState(ctx context.Context, conversationID string) error {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.stateKey(conversationID))
	pipe.SRem(ctx, s.indexKey(), conversationID)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStates returns indexed IDs whose document has not expired
func (s *RedisStateStore) ListStates(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(members))
	for _, id := range members {
		n, err := s.client.Exists(ctx, s.stateKey(id)).Result()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			s.client.SRem(ctx, s.indexKey(), id)
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
