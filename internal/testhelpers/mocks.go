package testhelpers

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/kitkuhar/kitkuhar/backend/internal/service"
)

// MockStore is a mock implementation of the media Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, name, r, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MemoryStore keeps media bytes in a map
type MemoryStore struct {
	mu    sync.Mutex
	Files map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Files: map[string][]byte{}}
}

func (s *MemoryStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[name] = data
	return "/static/recipe_steps/" + name, nil
}

func (s *MemoryStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Files[name]; !ok {
		return service.ErrNotFound
	}
	delete(s.Files, name)
	return nil
}

var (
	_ service.Store = (*MockStore)(nil)
	_ service.Store = (*MemoryStore)(nil)
)
