package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockStorage implements the Storage interface but just holds the data in memory.
type MockStorage struct {
	data    map[string][]byte
	expires map[string]time.Time

	lock sync.Mutex
}

// NewMockStorage creates a new mock storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		data:    make(map[string][]byte),
		expires: make(map[string]time.Time),
	}
}

// Write copies the data into memory. A TTL is honored by Read.
func (s *MockStorage) Write(ctx context.Context, key string, body []byte, options *Options) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	c := make([]byte, len(body))
	copy(c, body)
	s.data[key] = c

	if options != nil && options.TTL > 0 {
		s.expires[key] = time.Now().Add(time.Duration(options.TTL) * time.Second)
	} else {
		delete(s.expires, key)
	}

	return nil
}

func (s *MockStorage) Read(ctx context.Context, key string) ([]byte, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.isExpired(key) {
		return nil, ErrNotFound
	}

	result, exists := s.data[key]
	if !exists {
		return nil, ErrNotFound
	}

	c := make([]byte, len(result))
	copy(c, result)
	return c, nil
}

func (s *MockStorage) Remove(ctx context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	_, exists := s.data[key]
	if !exists {
		return ErrNotFound
	}

	delete(s.data, key)
	delete(s.expires, key)
	return nil
}

func (s *MockStorage) List(ctx context.Context, path string) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	result := make([]string, 0)
	for key := range s.data {
		if !strings.HasPrefix(key, path) || s.isExpired(key) {
			continue
		}

		result = append(result, key)
	}

	sort.Strings(result)
	return result, nil
}

// Count returns the number of items held.
func (s *MockStorage) Count() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.data)
}

func (s *MockStorage) isExpired(key string) bool {
	expires, exists := s.expires[key]
	return exists && time.Now().After(expires)
}
