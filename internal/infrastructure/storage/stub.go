package storage

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

// StubObjectStorage is used when object storage is disabled. Upload URLs
// point at BaseURL and every key counts as present.
type StubObjectStorage struct {
	BaseURL string

	mu      sync.Mutex
	deleted []string
}

// NewStubObjectStorage creates a StubObjectStorage
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/uploads"
	}
	return &StubObjectStorage{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Ensure StubObjectStorage implements ObjectStorage
var _ catalogapp.ObjectStorage = (*StubObjectStorage)(nil)

// GenerateUploadURL returns a fake presigned URL
func (s *StubObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errKeyRequired
	}
	expiresAt := time.Now().Add(expiresIn)
	return s.PublicURL(storageKey) + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}

// PublicURL joins BaseURL and storageKey
func (s *StubObjectStorage) PublicURL(storageKey string) string {
	return s.BaseURL + "/" + strings.TrimPrefix(storageKey, "/")
}

// DeleteObject records the key
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errKeyRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, storageKey)
	return nil
}

// ObjectExists always reports true
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errKeyRequired
	}
	return true, nil
}

// Deleted returns the keys passed to DeleteObject
func (s *StubObjectStorage) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
