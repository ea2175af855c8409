// Package kv provides the string key/value persistence used by quotebook.
//
// Two scopes exist. The durable scope survives restarts and is backed by a
// SQLite database. The ephemeral scope lives for the current session only and
// is held in memory.
package kv

import (
	"sync"

	"go.uber.org/zap"
)

// Store is a string keyed store. Get reports ok=false when the key is absent.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Ensure implementations satisfy Store at compile time.
var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Memory)(nil)
	_ Store = (*Session)(nil)
)

// Memory is an in-process store. The zero value is ready to use.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

// Session wraps a store whose writes are best effort. Write failures are
// logged and never returned to the caller.
type Session struct {
	inner  Store
	logger *zap.Logger
}

// NewSession wraps inner. A nil inner uses a fresh Memory store.
func NewSession(inner Store, logger *zap.Logger) *Session {
	if inner == nil {
		inner = NewMemory()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{inner: inner, logger: logger}
}

// Get reads through to the wrapped store. Read failures are reported as absent.
func (s *Session) Get(key string) (string, bool, error) {
	v, ok, err := s.inner.Get(key)
	if err != nil {
		s.logger.Warn("session read failed", zap.String("key", key), zap.Error(err))
		return "", false, nil
	}
	return v, ok, nil
}

// Set writes through to the wrapped store and always returns nil.
func (s *Session) Set(key, value string) error {
	if err := s.inner.Set(key, value); err != nil {
		s.logger.Warn("session write dropped", zap.String("key", key), zap.Error(err))
	}
	return nil
}
