package repository

import (
	"context"
	"sync"
	"time"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// In-memory implementations of the Redis-backed stores, used in tests and
// when running without Redis.

// MemoryCredentialCache is an in-memory CredentialCache. Now is injectable so
// the validity window can be tested without sleeping.
type MemoryCredentialCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cachedCredentials
	Now     func() time.Time
}

// NewMemoryCredentialCache constructs the cache with the given validity window.
func NewMemoryCredentialCache(ttl time.Duration) *MemoryCredentialCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryCredentialCache{
		ttl:     ttl,
		entries: make(map[string]cachedCredentials),
		Now:     time.Now,
	}
}

func (c *MemoryCredentialCache) Get(_ context.Context, userID string) (domain.Role, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[userID]
	if !ok || entry.UserID != userID {
		return "", 0, false
	}
	age := c.Now().Sub(entry.CachedAt)
	if age >= c.ttl {
		delete(c.entries, userID)
		return "", 0, false
	}
	return entry.Credentials, age, true
}

func (c *MemoryCredentialCache) Put(_ context.Context, userID string, role domain.Role) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cachedCredentials{UserID: userID, Credentials: role, CachedAt: c.Now()}
	return nil
}

func (c *MemoryCredentialCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

// MemoryDraftStore is an in-memory DraftStore.
type MemoryDraftStore struct {
	mu     sync.Mutex
	drafts map[string]domain.WizardDraft
}

// NewMemoryDraftStore constructs the store.
func NewMemoryDraftStore() *MemoryDraftStore {
	return &MemoryDraftStore{drafts: make(map[string]domain.WizardDraft)}
}

func (s *MemoryDraftStore) Get(_ context.Context, sessionID string) (*domain.WizardDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	copied := draft
	return &copied, nil
}

func (s *MemoryDraftStore) Put(_ context.Context, draft *domain.WizardDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.UpdatedAt = time.Now()
	s.drafts[draft.SessionID] = *draft
	return nil
}

func (s *MemoryDraftStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	return nil
}

// MemoryTrainingStore is an in-memory TrainingStore.
type MemoryTrainingStore struct {
	mu         sync.Mutex
	watermarks map[string]float64
	fallbacks  map[string]time.Time
	quizzes    map[string]domain.QuizSession
}

// NewMemoryTrainingStore constructs the store.
func NewMemoryTrainingStore() *MemoryTrainingStore {
	return &MemoryTrainingStore{
		watermarks: make(map[string]float64),
		fallbacks:  make(map[string]time.Time),
		quizzes:    make(map[string]domain.QuizSession),
	}
}

func (s *MemoryTrainingStore) Watermark(_ context.Context, userID string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watermarks[userID], nil
}

func (s *MemoryTrainingStore) SetWatermark(_ context.Context, userID string, seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermarks[userID] = seconds
	return nil
}

func (s *MemoryTrainingStore) FallbackStartedAt(_ context.Context, userID string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fallbacks[userID], nil
}

func (s *MemoryTrainingStore) MarkFallbackStarted(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fallbacks[userID]; !ok {
		s.fallbacks[userID] = at
	}
	return nil
}

func (s *MemoryTrainingStore) QuizSession(_ context.Context, userID string) (*domain.QuizSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.quizzes[userID]
	if !ok {
		return nil, ErrQuizSessionNotFound
	}
	copied := session
	return &copied, nil
}

func (s *MemoryTrainingStore) PutQuizSession(_ context.Context, session *domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[session.UserID] = *session
	return nil
}

func (s *MemoryTrainingStore) DeleteQuizSession(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, userID)
	return nil
}
