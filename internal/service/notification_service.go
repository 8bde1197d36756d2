package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/config"
	"github.com/remotereps/agent-onboarding/internal/events"
)

// NotificationService emits notifications for application lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventApplicationSubmitted, n.handleApplicationSubmitted)
	n.dispatcher.Subscribe(events.EventApplicationApproved, n.handleApplicationApproved)
	n.dispatcher.Subscribe(events.EventApplicationRejected, n.handleApplicationRejected)
	n.dispatcher.Subscribe(events.EventQuizCompleted, n.handleQuizCompleted)
}

func (n *NotificationService) handleApplicationSubmitted(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationSubmitted", zap.String("profile_id", event.ProfileID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApplicationApproved(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationApproved", zap.String("profile_id", event.ProfileID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleApplicationRejected(ctx context.Context, event events.Event) error {
	n.logger.Info("ApplicationRejected", zap.String("profile_id", event.ProfileID))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleQuizCompleted(ctx context.Context, event events.Event) error {
	n.logger.Info("QuizCompleted", zap.String("profile_id", event.ProfileID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("profile_id", event.ProfileID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("profile_id", event.ProfileID),
		zap.String("event_type", string(event.Type)))
}
