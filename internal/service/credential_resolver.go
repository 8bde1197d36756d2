package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/repository"
)

// ResolutionSource names the cascade step that produced a resolution.
type ResolutionSource string

const (
	SourceCache    ResolutionSource = "cache"
	SourceRPC      ResolutionSource = "rpc"
	SourceProfile  ResolutionSource = "profile"
	SourceFallback ResolutionSource = "fallback"
	SourceDefault  ResolutionSource = "default"
)

// Resolution is the typed outcome of a credential lookup.
type Resolution struct {
	Role   domain.Role
	Source ResolutionSource
}

// ResolverBackend abstracts the two remote credential procedures.
type ResolverBackend interface {
	IsSupervisor(ctx context.Context, userID string) (bool, error)
	GetCredentials(ctx context.Context, userID string) (domain.Role, error)
}

// CredentialResolver decides supervisor vs agent for a session through a
// layered cascade: cache, supervisor check, already-loaded profile hint,
// raw credentials lookup, and finally a permissive agent default. Read
// failures never block the user.
type CredentialResolver struct {
	cache       repository.CredentialCache
	backend     ResolverBackend
	maxAttempts int
	logger      *zap.Logger
}

// NewCredentialResolver constructs the resolver.
func NewCredentialResolver(cache repository.CredentialCache, backend ResolverBackend, maxAttempts int, logger *zap.Logger) *CredentialResolver {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &CredentialResolver{cache: cache, backend: backend, maxAttempts: maxAttempts, logger: logger}
}

// Resolve runs the cascade. profileHint is the credentials value from an
// already-loaded profile snapshot, or empty when none is loaded; it is
// trusted only after the supervisor check errors.
func (r *CredentialResolver) Resolve(ctx context.Context, userID string, profileHint domain.Role) Resolution {
	if role, _, ok := r.cache.Get(ctx, userID); ok {
		return Resolution{Role: role, Source: SourceCache}
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		isSupervisor, err := r.backend.IsSupervisor(ctx, userID)
		if err == nil {
			role := domain.RoleAgent
			if isSupervisor {
				role = domain.RoleSupervisor
			}
			r.put(ctx, userID, role)
			return Resolution{Role: role, Source: SourceRPC}
		}
		r.logger.Warn("supervisor check failed",
			zap.String("user_id", userID), zap.Int("attempt", attempt), zap.Error(err))

		if profileHint != "" {
			role := routedRole(profileHint)
			r.put(ctx, userID, role)
			return Resolution{Role: role, Source: SourceProfile}
		}

		role, err := r.backend.GetCredentials(ctx, userID)
		if err == nil && domain.ValidRole(role) {
			role = routedRole(role)
			r.put(ctx, userID, role)
			return Resolution{Role: role, Source: SourceFallback}
		}
		if err != nil {
			r.logger.Warn("credentials lookup failed",
				zap.String("user_id", userID), zap.Int("attempt", attempt), zap.Error(err))
		}
	}

	// Prefer availability: an unresolvable user gets the least-privileged
	// dashboard instead of a blocked session.
	return Resolution{Role: domain.RoleAgent, Source: SourceDefault}
}

// Invalidate drops the cached entry for a user, used on logout.
func (r *CredentialResolver) Invalidate(ctx context.Context, userID string) {
	if err := r.cache.Invalidate(ctx, userID); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func (r *CredentialResolver) put(ctx context.Context, userID string, role domain.Role) {
	if err := r.cache.Put(ctx, userID, role); err != nil {
		r.logger.Warn("cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// routedRole collapses any non-supervisor credential onto the agent route.
func routedRole(role domain.Role) domain.Role {
	switch role {
	case domain.RoleSupervisor, domain.RoleAdmin:
		return role
	}
	return domain.RoleAgent
}
