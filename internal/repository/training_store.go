package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// ErrQuizSessionNotFound signals an absent quiz session.
var ErrQuizSessionNotFound = errors.New("quiz session not found")

// TrainingStore keeps transient training-gate state: the video playback
// watermark, the fallback-player timer, and the in-flight quiz session.
type TrainingStore interface {
	// Watermark returns the highest playback position reached, in seconds.
	Watermark(ctx context.Context, userID string) (float64, error)
	SetWatermark(ctx context.Context, userID string, seconds float64) error

	// FallbackStartedAt returns when the fallback player path began for the
	// user, or the zero time if it never did.
	FallbackStartedAt(ctx context.Context, userID string) (time.Time, error)
	MarkFallbackStarted(ctx context.Context, userID string, at time.Time) error

	QuizSession(ctx context.Context, userID string) (*domain.QuizSession, error)
	PutQuizSession(ctx context.Context, session *domain.QuizSession) error
	DeleteQuizSession(ctx context.Context, userID string) error
}

type redisTrainingStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTrainingStore returns a Redis-backed training store.
func NewRedisTrainingStore(client *redis.Client, ttl time.Duration) TrainingStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisTrainingStore{client: client, ttl: ttl}
}

func (s *redisTrainingStore) Watermark(ctx context.Context, userID string) (float64, error) {
	val, err := s.client.Get(ctx, "training:watermark:"+userID).Float64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

func (s *redisTrainingStore) SetWatermark(ctx context.Context, userID string, seconds float64) error {
	return s.client.Set(ctx, "training:watermark:"+userID, seconds, s.ttl).Err()
}

func (s *redisTrainingStore) FallbackStartedAt(ctx context.Context, userID string) (time.Time, error) {
	val, err := s.client.Get(ctx, "training:fallback:"+userID).Int64()
	if err == redis.Nil {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(val, 0), nil
}

func (s *redisTrainingStore) MarkFallbackStarted(ctx context.Context, userID string, at time.Time) error {
	// SetNX keeps the first fallback start; repeated reports must not reset
	// the manual-completion delay.
	return s.client.SetNX(ctx, "training:fallback:"+userID, at.Unix(), s.ttl).Err()
}

func (s *redisTrainingStore) QuizSession(ctx context.Context, userID string) (*domain.QuizSession, error) {
	raw, err := s.client.Get(ctx, "training:quiz:"+userID).Bytes()
	if err == redis.Nil {
		return nil, ErrQuizSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session domain.QuizSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *redisTrainingStore) PutQuizSession(ctx context.Context, session *domain.QuizSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "training:quiz:"+session.UserID, raw, s.ttl).Err()
}

func (s *redisTrainingStore) DeleteQuizSession(ctx context.Context, userID string) error {
	return s.client.Del(ctx, "training:quiz:"+userID).Err()
}
