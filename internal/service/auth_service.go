package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/auth"
	"github.com/remotereps/agent-onboarding/internal/config"
	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/repository"
	apperrors "github.com/remotereps/agent-onboarding/pkg/util"
)

// AuthService coordinates sign-in, sign-out and password management.
type AuthService struct {
	profiles   repository.ProfileRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	denylist   auth.TokenDenylist
	resolver   *CredentialResolver
	bcryptCost int
	resetTTL   time.Duration
	logger     *zap.Logger
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	ProfileRepo       repository.ProfileRepository
	PasswordResetRepo repository.PasswordResetRepository
	Denylist          auth.TokenDenylist
	Resolver          *CredentialResolver
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		profiles:   deps.ProfileRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		denylist:   deps.Denylist,
		resolver:   deps.Resolver,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		logger:     zap.NewNop(),
	}
}

// WithLogger replaces the service logger.
func (s *AuthService) WithLogger(logger *zap.Logger) *AuthService {
	s.logger = logger
	return s
}

// Login authenticates a profile by email and password. The role claim on the
// issued token comes from the resolver cascade.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	resolution := s.resolver.Resolve(ctx, profile.ID, profile.Credentials)
	token, exp, err := s.tokenMgr.GenerateToken(profile.ID, resolution.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return profile, token, exp, nil
}

// IssueToken signs a session token for a profile, used after wizard signup.
func (s *AuthService) IssueToken(ctx context.Context, profile *domain.Profile) (string, time.Time, error) {
	resolution := s.resolver.Resolve(ctx, profile.ID, profile.Credentials)
	return s.tokenMgr.GenerateToken(profile.ID, resolution.Role)
}

// Logout revokes the presented token and drops the cached credentials so the
// next session resolves fresh.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return nil
	}
	if s.denylist != nil && principal.TokenID != "" {
		if err := s.denylist.Revoke(ctx, principal.TokenID, s.tokenMgr.TTL()); err != nil {
			s.logger.Warn("token revocation failed", zap.Error(err))
		}
	}
	if principal.Profile != nil {
		s.resolver.Invalidate(ctx, principal.Profile.ID)
	}
	return nil
}

// RevokeSession revokes a session by token ID without a loaded principal,
// used when a rejection terminates the session mid-request.
func (s *AuthService) RevokeSession(ctx context.Context, tokenID, profileID string) {
	if s.denylist != nil && tokenID != "" {
		if err := s.denylist.Revoke(ctx, tokenID, s.tokenMgr.TTL()); err != nil {
			s.logger.Warn("token revocation failed", zap.Error(err))
		}
	}
	if profileID != "" {
		s.resolver.Invalidate(ctx, profileID)
	}
}

// RequestPasswordReset persists a reset token for the email, if registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	token := &repository.PasswordResetToken{
		ProfileID: profile.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("token expired or used", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.setPassword(ctx, token.ProfileID, hash); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// ChangePassword verifies the current password before updating.
func (s *AuthService) ChangePassword(ctx context.Context, profileID, currentPassword, newPassword string) error {
	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(profile.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.setPassword(ctx, profileID, hash)
}

func (s *AuthService) setPassword(ctx context.Context, profileID, hash string) error {
	return s.profiles.SetPasswordHash(ctx, profileID, hash)
}

// HashPassword exposes hashing with the configured cost for signup.
func (s *AuthService) HashPassword(password string) (string, error) {
	return auth.HashPassword(password, s.bcryptCost)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
