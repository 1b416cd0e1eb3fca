// Package storage provides the durable key-value store that keeps a session
// alive across restarts, the way a browser's localStorage does for a page.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("storage: key not found")

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// Store is a string key-value store. Delete of an absent key is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Open returns the store for driver. dsn is interpreted by the backend:
// a file path or DSN for SQL drivers, a redis URL for redis, ignored for memory.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	driver = strings.ToLower(driver)
	switch driver {
	case "memory", "":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(NewRedisClient(dsn), DefaultKeyPrefix), nil
	case DialectSQLite, DialectMySQL, DialectPostgres:
		db, err := NewDB(driver, dsn)
		if err != nil {
			return nil, err
		}
		s := NewSQLStore(db, driver)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Len reports the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
