package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mkorchagin/foodcart/internal/domain"
)

// MockKV is an in-memory KV for tests. Optional func fields override
// behavior; by default it acts as a plain map with no expiry.
type MockKV struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value string, ttl time.Duration) error

	mu     sync.Mutex
	values map[string]string
}

var _ KV = (*MockKV)(nil)

func NewMockKV() *MockKV {
	return &MockKV{values: make(map[string]string)}
}

func (m *MockKV) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.values[key]
	if !ok {
		return "", domain.ErrCartNotCached
	}
	return val, nil
}

func (m *MockKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
