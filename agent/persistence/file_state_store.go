package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const stateFileExt = ".json"

// FileStateStore writes one JSON document per conversation under BaseDir/states.
// Suitable for single-node deployments.
type FileStateStore struct {
	baseDir string
	mu      sync.RWMutex
	closed  bool
}

// NewFileStateStore creates a new file-based state store
func NewFileStateStore(config StoreConfig) (*FileStateStore, error) {
	baseDir := filepath.Join(config.BaseDir, "states")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state store directory: %w", err)
	}
	return &FileStateStore{baseDir: baseDir}, nil
}

func (s *FileStateStore) path(conversationID string) string {
	return filepath.Join(s.baseDir, conversationID+stateFileExt)
}

// Close closes the store
func (s *FileStateStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ping checks if the store is healthy
func (s *FileStateStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	_, err := os.Stat(s.baseDir)
	return err
}

// SaveState writes data atomically: temp file then rename
func (s *FileStateStore) SaveState(ctx context.Context, conversationID string, data []byte) error {
	if err := ValidateConversationID(conversationID); err != nil {
		return err
	}
	if len(data) == 0 {
		return ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	path := s.path(conversationID)
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tempPath, path)
}

// LoadState reads the saved document
func (s *FileStateStore) LoadState(ctx context.Context, conversationID string) ([]byte, error) {
	if err := ValidateConversationID(conversationID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	data, err := os.ReadFile(s.path(conversationID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return data, nil
}

// DeleteState removes the saved document
func (s *FileStateStore) DeleteState(ctx context.Context, conversationID string) error {
	if err := ValidateConversationID(conversationID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	err := os.Remove(s.path(conversationID))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

// ListStates lists saved IDs
func (s *FileStateStore) ListStates(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list state files: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, stateFileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, stateFileExt))
	}
	sort.Strings(ids)
	return ids, nil
}
