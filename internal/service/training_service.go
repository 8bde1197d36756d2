package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/config"
	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/events"
	"github.com/remotereps/agent-onboarding/internal/repository"
	apperrors "github.com/remotereps/agent-onboarding/pkg/util"
)

// TrainingService runs the training gate: video watch tracking with a
// forward-skip heuristic, the fallback player path, and the quiz.
type TrainingService struct {
	profiles   repository.ProfileRepository
	store      repository.TrainingStore
	dispatcher events.Dispatcher
	cfg        config.TrainingConfig
	questions  []domain.QuizQuestion
	logger     *zap.Logger
	now        func() time.Time
}

// NewTrainingService constructs the service with the default question bank.
func NewTrainingService(profiles repository.ProfileRepository, store repository.TrainingStore, dispatcher events.Dispatcher, cfg config.TrainingConfig, logger *zap.Logger) *TrainingService {
	return &TrainingService{
		profiles:   profiles,
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		questions:  defaultQuestions,
		logger:     logger,
		now:        time.Now,
	}
}

// TrainingState is the gate snapshot rendered to the user.
type TrainingState struct {
	Stage         domain.TrainingStage
	Watermark     float64
	VideoDuration int
	QuizTotal     int
	QuizScore     int
	QuizPassed    *bool
	RetryAllowed  bool
}

// ProgressResult reports the accepted playback position after a progress ping.
type ProgressResult struct {
	Position float64
	Warned   bool
}

// State derives the entry state of the gate from the persisted flags.
func (s *TrainingService) State(ctx context.Context, p *domain.Profile) (*TrainingState, error) {
	watermark, err := s.store.Watermark(ctx, p.ID)
	if err != nil {
		// Transient read failure: render the gate from the profile alone.
		s.logger.Warn("watermark read failed", zap.String("user_id", p.ID), zap.Error(err))
		watermark = 0
	}
	return &TrainingState{
		Stage:         domain.TrainingStageFor(p),
		Watermark:     watermark,
		VideoDuration: s.cfg.VideoDurationSeconds,
		QuizTotal:     len(s.questions),
		QuizScore:     p.QuizScore,
		QuizPassed:    p.QuizPassed,
		RetryAllowed:  s.cfg.AllowQuizRetry,
	}, nil
}

// ReportProgress records a once-per-second playback ping. A position beyond
// the highest point actually reached plus a small buffer is treated as a
// forward skip: the position is forced back and the caller warned. This is a
// heuristic, not a security boundary.
func (s *TrainingService) ReportProgress(ctx context.Context, userID string, position float64) (*ProgressResult, error) {
	if position < 0 {
		position = 0
	}
	watermark, err := s.store.Watermark(ctx, userID)
	if err != nil {
		return nil, err
	}
	buffer := float64(s.cfg.SkipBufferSeconds)
	if position > watermark+buffer {
		s.logger.Info("forward skip detected",
			zap.String("user_id", userID),
			zap.Float64("position", position),
			zap.Float64("watermark", watermark))
		return &ProgressResult{Position: watermark, Warned: true}, nil
	}
	if position > watermark {
		if err := s.store.SetWatermark(ctx, userID, position); err != nil {
			return nil, err
		}
		watermark = position
	}
	return &ProgressResult{Position: position, Warned: false}, nil
}

// CompleteVideo handles natural playback completion. The watermark must have
// reached the end of the video (within the skip buffer).
func (s *TrainingService) CompleteVideo(ctx context.Context, userID string) error {
	watermark, err := s.store.Watermark(ctx, userID)
	if err != nil {
		return err
	}
	required := float64(s.cfg.VideoDurationSeconds - s.cfg.SkipBufferSeconds)
	if watermark < required {
		return apperrors.NewValidationError("video not fully watched", map[string]any{
			"watched_seconds": watermark,
		})
	}
	return s.markWatched(ctx, userID)
}

// ReportPlayerFailure records that the primary player failed to initialize.
// It returns the time after which a manual completion will be accepted.
func (s *TrainingService) ReportPlayerFailure(ctx context.Context, userID string) (time.Time, error) {
	if err := s.store.MarkFallbackStarted(ctx, userID, s.now()); err != nil {
		return time.Time{}, err
	}
	startedAt, err := s.store.FallbackStartedAt(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	return startedAt.Add(s.cfg.FallbackDelay()), nil
}

// CompleteVideoManually accepts the fallback path's mark-as-watched, only
// after the fixed delay has elapsed since the player failure was reported.
// The skip heuristic cannot be enforced on this path.
func (s *TrainingService) CompleteVideoManually(ctx context.Context, userID string) error {
	startedAt, err := s.store.FallbackStartedAt(ctx, userID)
	if err != nil {
		return err
	}
	if startedAt.IsZero() {
		return apperrors.NewValidationError("fallback player not active", nil)
	}
	if s.now().Before(startedAt.Add(s.cfg.FallbackDelay())) {
		return apperrors.NewValidationError("video not fully watched", nil)
	}
	return s.markWatched(ctx, userID)
}

func (s *TrainingService) markWatched(ctx context.Context, userID string) error {
	if err := s.profiles.SetVideoWatched(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, events.EventVideoWatched, userID, nil)
	return nil
}

// QuizQuestionView is a question with the answer key stripped.
type QuizQuestionView struct {
	Index   int
	Total   int
	ID      string
	Prompt  string
	Options []string
}

// StartQuiz opens a quiz session. The video must be watched first; a second
// attempt after a recorded result requires the retry policy to be enabled.
func (s *TrainingService) StartQuiz(ctx context.Context, p *domain.Profile) (*QuizQuestionView, error) {
	if !p.VideoWatched {
		return nil, apperrors.NewValidationError("training video not watched", nil)
	}
	if p.QuizPassed != nil && !s.cfg.AllowQuizRetry {
		return nil, apperrors.NewForbidden("quiz already attempted")
	}
	session := &domain.QuizSession{UserID: p.ID, Index: 0, Correct: 0}
	if err := s.store.PutQuizSession(ctx, session); err != nil {
		return nil, err
	}
	return s.questionView(0), nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *TrainingService) CurrentQuestion(ctx context.Context, userID string) (*QuizQuestionView, error) {
	session, err := s.store.QuizSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.questionView(session.Index), nil
}

// AnswerOutcome is the result of answering one question: either the next
// question or, after the final one, the scored result.
type AnswerOutcome struct {
	Next   *QuizQuestionView
	Result *domain.QuizResult
}

// AnswerQuestion records an answer. Questions are answered strictly in
// order; there is no back navigation once answered. The final answer scores
// the attempt and persists the outcome.
func (s *TrainingService) AnswerQuestion(ctx context.Context, userID string, questionIndex, choice int) (*AnswerOutcome, error) {
	session, err := s.store.QuizSession(ctx, userID)
	if err != nil {
		if err == repository.ErrQuizSessionNotFound {
			return nil, apperrors.NewValidationError("no quiz in progress", nil)
		}
		return nil, err
	}
	if questionIndex != session.Index {
		return nil, apperrors.NewValidationError("question already answered", map[string]any{
			"expected": session.Index,
		})
	}
	question := s.questions[session.Index]
	if choice < 0 || choice >= len(question.Options) {
		return nil, apperrors.NewValidationError("answer required", nil)
	}
	if choice == question.CorrectIndex {
		session.Correct++
	}
	session.Index++

	if session.Index < len(s.questions) {
		if err := s.store.PutQuizSession(ctx, session); err != nil {
			return nil, err
		}
		return &AnswerOutcome{Next: s.questionView(session.Index)}, nil
	}

	result := domain.ScoreQuiz(session.Correct, len(s.questions))
	if err := s.profiles.SetQuizResult(ctx, userID, result.Score, result.Passed); err != nil {
		return nil, err
	}
	if err := s.store.DeleteQuizSession(ctx, userID); err != nil {
		s.logger.Warn("quiz session cleanup failed", zap.String("user_id", userID), zap.Error(err))
	}
	s.publish(ctx, events.EventQuizCompleted, userID, events.QuizCompletedPayload{
		Score:  result.Score,
		Passed: result.Passed,
	})
	return &AnswerOutcome{Result: &result}, nil
}

func (s *TrainingService) questionView(index int) *QuizQuestionView {
	q := s.questions[index]
	return &QuizQuestionView{
		Index:   index,
		Total:   len(s.questions),
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: append([]string{}, q.Options...),
	}
}

func (s *TrainingService) publish(ctx context.Context, eventType events.EventType, profileID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ProfileID: profileID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}

var defaultQuestions = []domain.QuizQuestion{
	{
		ID:     "hours",
		Prompt: "What is the minimum weekly commitment expected of agents?",
		Options: []string{
			"5 hours per week, every week",
			"15 hours per week, at least three of every four weeks",
			"40 hours per week",
			"There is no minimum",
		},
		CorrectIndex: 1,
	},
	{
		ID:     "chat",
		Prompt: "How often must agents log into the team chat?",
		Options: []string{
			"Once a month",
			"Only when scheduled",
			"Every day",
			"Never",
		},
		CorrectIndex: 2,
	},
	{
		ID:     "email",
		Prompt: "When should agents check their work email?",
		Options: []string{
			"Daily",
			"Weekly",
			"Only during shifts",
			"Email is optional",
		},
		CorrectIndex: 0,
	},
	{
		ID:     "equipment",
		Prompt: "Which equipment is required before taking calls?",
		Options: []string{
			"A webcam",
			"A headset and a quiet workspace",
			"A second monitor",
			"A company-issued laptop",
		},
		CorrectIndex: 1,
	},
	{
		ID:     "problems",
		Prompt: "What is the expected first response to a technical problem?",
		Options: []string{
			"Wait for a supervisor to notice",
			"Stop working until someone calls",
			"Attempt to solve it proactively, then escalate",
			"Ignore it",
		},
		CorrectIndex: 2,
	},
}
