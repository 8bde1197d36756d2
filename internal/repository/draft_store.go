package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// ErrDraftNotFound signals a missing or expired wizard draft.
var ErrDraftNotFound = errors.New("wizard draft not found")

// DraftStore holds in-progress wizard drafts keyed by wizard session.
type DraftStore interface {
	Get(ctx context.Context, sessionID string) (*domain.WizardDraft, error)
	Put(ctx context.Context, draft *domain.WizardDraft) error
	Delete(ctx context.Context, sessionID string) error
}

type redisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore returns a Redis-backed draft store. Drafts expire after
// ttl of inactivity.
func NewRedisDraftStore(client *redis.Client, ttl time.Duration) DraftStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisDraftStore{client: client, ttl: ttl}
}

func draftKey(sessionID string) string {
	return "wizard:draft:" + sessionID
}

func (s *redisDraftStore) Get(ctx context.Context, sessionID string) (*domain.WizardDraft, error) {
	raw, err := s.client.Get(ctx, draftKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var draft domain.WizardDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *redisDraftStore) Put(ctx context.Context, draft *domain.WizardDraft) error {
	draft.UpdatedAt = time.Now()
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.SessionID), raw, s.ttl).Err()
}

func (s *redisDraftStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, draftKey(sessionID)).Err()
}
