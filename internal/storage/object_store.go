package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrObjectNotFound signals a missing staged object.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore accepts binary evidence uploads. Files are first staged while
// the wizard is in progress, then promoted to a stable public URL at
// submission time.
type ObjectStore interface {
	Stage(ctx context.Context, filename string, data []byte) (stagedKey string, err error)
	Promote(ctx context.Context, stagedKey string) (url string, err error)
	Discard(ctx context.Context, stagedKey string) error
}

// DiskStore keeps objects under a root directory and serves them from a base
// URL. Object keys are generated, never caller-supplied.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore builds the store, creating the staging and public directories.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	for _, dir := range []string{filepath.Join(root, "staging"), filepath.Join(root, "public")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
	}
	return &DiskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Stage(_ context.Context, filename string, data []byte) (string, error) {
	key := uuid.NewString() + sanitizeExt(filename)
	path := filepath.Join(s.root, "staging", key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: stage %s: %w", key, err)
	}
	return key, nil
}

func (s *DiskStore) Promote(_ context.Context, stagedKey string) (string, error) {
	key := filepath.Base(stagedKey)
	src := filepath.Join(s.root, "staging", key)
	dst := filepath.Join(s.root, "public", key)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", ErrObjectNotFound
		}
		return "", err
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("storage: promote %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

func (s *DiskStore) Discard(_ context.Context, stagedKey string) error {
	key := filepath.Base(stagedKey)
	err := os.Remove(filepath.Join(s.root, "staging", key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PublicDir returns the directory served as static content.
func (s *DiskStore) PublicDir() string {
	return filepath.Join(s.root, "public")
}

func sanitizeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".pdf":
		return ext
	}
	return ""
}

// MemoryStore is an in-memory ObjectStore used in tests.
type MemoryStore struct {
	mu      sync.Mutex
	staged  map[string][]byte
	baseURL string

	// FailPromote, when set, makes every Promote call fail. Exercises the
	// degrade-to-empty-reference submission path.
	FailPromote bool
}

// NewMemoryStore constructs the store.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{staged: make(map[string][]byte), baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *MemoryStore) Stage(_ context.Context, filename string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := uuid.NewString() + sanitizeExt(filename)
	s.staged[key] = data
	return key, nil
}

func (s *MemoryStore) Promote(_ context.Context, stagedKey string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPromote {
		return "", errors.New("storage: promote failed")
	}
	if _, ok := s.staged[stagedKey]; !ok {
		return "", ErrObjectNotFound
	}
	delete(s.staged, stagedKey)
	return s.baseURL + "/" + stagedKey, nil
}

func (s *MemoryStore) Discard(_ context.Context, stagedKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.staged, stagedKey)
	return nil
}
