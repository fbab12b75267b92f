package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// MemoryStorage hands out unsigned URLs against a fake base and remembers
// deleted keys. It backs the "memory" database driver and tests.
type MemoryStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted []string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "http://localhost:9000/media"
	}
	return &MemoryStorage{BaseURL: baseURL}
}

func (m *MemoryStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	return m.url(objectKey, "PUT", expires), nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return m.url(objectKey, "GET", expires), nil
}

func (m *MemoryStorage) DeleteObject(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, objectKey)
	return nil
}

// Deleted returns the keys passed to DeleteObject so far.
func (m *MemoryStorage) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func (m *MemoryStorage) url(objectKey, method string, expires time.Duration) string {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	q := url.Values{}
	q.Set("method", method)
	q.Set("expires", fmt.Sprintf("%d", int(expires.Seconds())))
	return fmt.Sprintf("%s/%s?%s", m.BaseURL, objectKey, q.Encode())
}
