package persistence

import (
	"fmt"
)

// NewStateStore creates a new StateStore based on the configuration
func NewStateStore(config StoreConfig) (StateStore, error) {
	switch config.Type {
	case StoreTypeMemory, "":
		return NewMemoryStateStore(), nil
	case StoreTypeFile:
		return NewFileStateStore(config)
	case StoreTypeRedis:
		return NewRedisStateStore(config)
	case StoreTypeBadger:
		return NewBadgerStateStore(config)
	case StoreTypeSQL:
		return NewSQLStateStore(config)
	default:
		return nil, fmt.Errorf("unsupported state store type: %s", config.Type)
	}
}

// MustNewStateStore creates a new StateStore or panics on error.
//
// WARNING: This function should ONLY be used during application initialization
// (e.g., in main() or init()). For runtime store creation, use NewStateStore instead.
func MustNewStateStore(config StoreConfig) StateStore {
	store, err := NewStateStore(config)
	if err != nil {
		panic(fmt.Sprintf("failed to create state store: %v", err))
	}
	return store
}
