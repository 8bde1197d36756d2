package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/events"
	"github.com/remotereps/agent-onboarding/internal/repository"
	apperrors "github.com/remotereps/agent-onboarding/pkg/util"
)

// ReviewService backs the supervisor dashboard: agent roster, administrative
// edits, and read-only evidence.
type ReviewService struct {
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewReviewService constructs the service.
func NewReviewService(profiles repository.ProfileRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ReviewService {
	return &ReviewService{profiles: profiles, dispatcher: dispatcher, logger: logger}
}

// ListAgents returns agent profiles, optionally filtered by a substring
// search across name, ID number and status.
func (s *ReviewService) ListAgents(ctx context.Context, search string) ([]domain.Profile, error) {
	return s.profiles.SearchAgents(ctx, search)
}

// GetProfile loads a single profile for review.
func (s *ReviewService) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// UpdateAdminFields writes only the administrative fields on the target row,
// never touching applicant-submitted data.
func (s *ReviewService) UpdateAdminFields(ctx context.Context, supervisorID, targetID string, fields domain.AdminFields) (*domain.Profile, error) {
	if fields.AgentStanding != "" {
		switch fields.AgentStanding {
		case domain.StandingGood, domain.StandingProbation, domain.StandingTerminated:
		default:
			return nil, apperrors.NewValidationError("unknown agent standing", map[string]any{
				"agent_standing": fields.AgentStanding,
			})
		}
	}
	if err := s.profiles.UpdateAdminFields(ctx, targetID, fields); err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventAdminFieldsUpdated,
			ProfileID: targetID,
			Timestamp: time.Now(),
			Payload:   events.AdminFieldsUpdatedPayload{SupervisorID: supervisorID},
		})
	}
	return s.profiles.GetByID(ctx, targetID)
}

// Evidence is the read-only view of an applicant's uploaded images.
type Evidence struct {
	IDImageURL        string
	SpeedTestURL      string
	SystemSettingsURL string
}

// GetEvidence returns the evidence image references for a profile.
func (s *ReviewService) GetEvidence(ctx context.Context, id string) (*Evidence, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Evidence{
		IDImageURL:        profile.IDImageURL,
		SpeedTestURL:      profile.SpeedTestURL,
		SystemSettingsURL: profile.SystemSettingsURL,
	}, nil
}

// ApplicationStatus returns the stored decision for a user, replacing the
// formerly canned status endpoint with a real read. The decision rule is
// re-run over the stored gate answers; the stored status stays authoritative
// but a divergence is logged so a bad write gets noticed.
func (s *ReviewService) ApplicationStatus(ctx context.Context, id string) (domain.ApplicationStatus, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if profile.ApplicationStatus != domain.ApplicationStatusPending {
		if recomputed := DecideStatus(GatesFromProfile(profile)); recomputed != profile.ApplicationStatus {
			s.logger.Warn("stored decision diverges from gate answers",
				zap.String("profile_id", id),
				zap.String("stored", string(profile.ApplicationStatus)),
				zap.String("recomputed", string(recomputed)))
		}
	}
	return profile.ApplicationStatus, nil
}

// Credentials returns the stored role for a user.
func (s *ReviewService) Credentials(ctx context.Context, id string) (domain.Role, error) {
	return s.profiles.GetCredentials(ctx, id)
}
