package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/repository"
	apperrors "github.com/remotereps/agent-onboarding/pkg/util"
)

const principalKey = "auth_principal"

// TokenDenylist tracks revoked token IDs until their natural expiry.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Principal represents the authenticated caller.
type Principal struct {
	Profile *domain.Profile
	Role    domain.Role
	TokenID string
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	profiles repository.ProfileRepository
	denylist TokenDenylist
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, profiles repository.ProfileRepository, denylist TokenDenylist, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, profiles: profiles, denylist: denylist, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(c.Context(), claims.ID)
		if err != nil {
			// Denylist unavailable: fail open, the token signature already verified.
			m.logger.Warn("denylist check failed", zap.Error(err))
		} else if revoked {
			return apperrors.NewUnauthorized("session terminated")
		}
	}

	profile, err := m.profiles.GetByID(c.Context(), claims.ProfileID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("profile not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Profile: profile, Role: claims.Role, TokenID: claims.ID})
	return c.Next()
}

// HandleOptional loads a principal when a valid bearer token is presented
// but lets anonymous requests through. Wizard routes use this: the entry
// guard behaves differently with and without a session.
func (m *AuthMiddleware) HandleOptional(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Next()
	}
	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return c.Next()
	}
	if m.denylist != nil {
		if revoked, err := m.denylist.IsRevoked(c.Context(), claims.ID); err == nil && revoked {
			return c.Next()
		}
	}
	profile, err := m.profiles.GetByID(c.Context(), claims.ProfileID)
	if err != nil {
		return c.Next()
	}
	c.Locals(principalKey, &Principal{Profile: profile, Role: claims.Role, TokenID: claims.ID})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
