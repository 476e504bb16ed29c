package persistence

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/BaSui01/swarmflow/internal/database"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrStoreClosed  = errors.New("store is closed")
	ErrInvalidInput = errors.New("invalid input")
)

// StoreType represents the type of storage backend
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeFile   StoreType = "file"
	StoreTypeRedis  StoreType = "redis"
	StoreTypeBadger StoreType = "badger"
	StoreTypeSQL    StoreType = "sql"
)

// StoreConfig is the base configuration for all store implementations
type StoreConfig struct {
	// Type is the storage backend type
	Type StoreType `json:"type" yaml:"type" env:"TYPE"`

	// BaseDir is the base directory for file and badger storage
	BaseDir string `json:"base_dir" yaml:"base_dir" env:"BASE_DIR"`

	// Redis configuration (only used when Type is "redis")
	Redis RedisStoreConfig `json:"redis" yaml:"redis" env:"REDIS"`

	// SQL configuration (only used when Type is "sql")
	SQL SQLStoreConfig `json:"sql" yaml:"sql" env:"SQL"`
}

// RedisStoreConfig contains Redis-specific configuration
type RedisStoreConfig struct {
	Addr     string `json:"addr" yaml:"addr" env:"ADDR"`
	Password string `json:"password" yaml:"password" env:"PASSWORD"`
	DB       int    `json:"db" yaml:"db" env:"DB"`
	PoolSize int    `json:"pool_size" yaml:"pool_size" env:"POOL_SIZE"`

	// KeyPrefix is the prefix for all Redis keys
	KeyPrefix string `json:"key_prefix" yaml:"key_prefix" env:"KEY_PREFIX"`

	// TTL expires saved states; zero keeps them forever
	TTL time.Duration `json:"ttl" yaml:"ttl" env:"TTL"`
}

// SQLStoreConfig contains gorm-specific configuration
type SQLStoreConfig struct {
	// Driver is one of postgres, mysql, sqlite
	Driver string `json:"driver" yaml:"driver" env:"DRIVER"`
	DSN    string `json:"dsn" yaml:"dsn" env:"DSN"`

	// Pool tunes the connection pool; SQLite always uses a single connection
	Pool database.PoolConfig `json:"pool" yaml:"pool" env:"POOL"`
}

// DefaultStoreConfig returns the default store configuration
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Type:    StoreTypeMemory,
		BaseDir: "./data/swarm",
		Redis: RedisStoreConfig{
			Addr:      "localhost:6379",
			DB:        0,
			PoolSize:  10,
			KeyPrefix: "swarmflow:",
		},
		SQL: SQLStoreConfig{
			Driver: "sqlite",
			DSN:    "./data/swarm/state.db",
			Pool:   database.DefaultPoolConfig(),
		},
	}
}

// Store is the base interface for all persistent stores
type Store interface {
	// Close closes the store and releases resources
	Close() error

	// Ping checks if the store is healthy
	Ping(ctx context.Context) error
}

// StateStore persists serialized manager state documents.
// Saving an existing ID replaces the previous document.
type StateStore interface {
	Store

	SaveState(ctx context.Context, conversationID string, data []byte) error

	// LoadState returns ErrNotFound when nothing was saved under conversationID
	LoadState(ctx context.Context, conversationID string) ([]byte, error)

	DeleteState(ctx context.Context, conversationID string) error

	// ListStates returns saved conversation IDs in lexical order
	ListStates(ctx context.Context) ([]string, error)
}

var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,254}$`)

// ValidateConversationID rejects IDs that cannot be used as a file name or key suffix.
func ValidateConversationID(id string) error {
	if !conversationIDPattern.MatchString(id) {
		return fmt.Errorf("%w: conversation id %q", ErrInvalidInput, id)
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
