package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/repository"
)

func newResolver(backend ResolverBackend) (*CredentialResolver, *repository.MemoryCredentialCache) {
	cache := repository.NewMemoryCredentialCache(30 * time.Minute)
	return NewCredentialResolver(cache, backend, 3, zap.NewNop()), cache
}

func TestResolveCacheHitSkipsBackend(t *testing.T) {
	backend := &fakeBackend{supervisorErr: errBackendDown}
	resolver, cache := newResolver(backend)
	ctx := context.Background()

	if err := cache.Put(ctx, "u1", domain.RoleSupervisor); err != nil {
		t.Fatal(err)
	}
	res := resolver.Resolve(ctx, "u1", "")
	if res.Role != domain.RoleSupervisor || res.Source != SourceCache {
		t.Fatalf("got %+v, want supervisor from cache", res)
	}
	if backend.supervisorCalls != 0 {
		t.Fatalf("backend consulted %d times on a cache hit", backend.supervisorCalls)
	}
}

func TestResolveSupervisorCheckWritesCache(t *testing.T) {
	backend := &fakeBackend{supervisor: true}
	resolver, cache := newResolver(backend)
	ctx := context.Background()

	res := resolver.Resolve(ctx, "u1", "")
	if res.Role != domain.RoleSupervisor || res.Source != SourceRPC {
		t.Fatalf("got %+v, want supervisor from rpc", res)
	}
	if role, _, ok := cache.Get(ctx, "u1"); !ok || role != domain.RoleSupervisor {
		t.Fatalf("cache not primed: role=%s ok=%v", role, ok)
	}

	// Second resolve must come from the cache.
	res = resolver.Resolve(ctx, "u1", "")
	if res.Source != SourceCache {
		t.Fatalf("second resolve source = %s, want cache", res.Source)
	}
	if backend.supervisorCalls != 1 {
		t.Fatalf("supervisor checks = %d, want 1", backend.supervisorCalls)
	}
}

func TestResolveNonSupervisorGetsAgent(t *testing.T) {
	resolver, _ := newResolver(&fakeBackend{supervisor: false})
	res := resolver.Resolve(context.Background(), "u1", "")
	if res.Role != domain.RoleAgent || res.Source != SourceRPC {
		t.Fatalf("got %+v, want agent from rpc", res)
	}
}

func TestResolveProfileHintAfterCheckFailure(t *testing.T) {
	backend := &fakeBackend{supervisorErr: errBackendDown}
	resolver, _ := newResolver(backend)

	res := resolver.Resolve(context.Background(), "u1", domain.RoleSupervisor)
	if res.Role != domain.RoleSupervisor || res.Source != SourceProfile {
		t.Fatalf("got %+v, want supervisor from profile hint", res)
	}
	if backend.credsCalls != 0 {
		t.Fatal("credentials lookup ran despite a usable profile hint")
	}
}

func TestResolveHintRoutesNonSupervisorToAgent(t *testing.T) {
	resolver, _ := newResolver(&fakeBackend{supervisorErr: errBackendDown})
	res := resolver.Resolve(context.Background(), "u1", domain.RoleApplicant)
	if res.Role != domain.RoleAgent || res.Source != SourceProfile {
		t.Fatalf("got %+v, want agent from profile hint", res)
	}
}

func TestResolveRawCredentialsFallback(t *testing.T) {
	backend := &fakeBackend{supervisorErr: errBackendDown, role: domain.RoleAdmin}
	resolver, cache := newResolver(backend)
	ctx := context.Background()

	res := resolver.Resolve(ctx, "u1", "")
	if res.Role != domain.RoleAdmin || res.Source != SourceFallback {
		t.Fatalf("got %+v, want admin from fallback", res)
	}
	if role, _, ok := cache.Get(ctx, "u1"); !ok || role != domain.RoleAdmin {
		t.Fatalf("fallback result not cached: role=%s ok=%v", role, ok)
	}
}

func TestResolveDefaultsToAgentAfterRetries(t *testing.T) {
	backend := &fakeBackend{supervisorErr: errBackendDown, roleErr: errBackendDown}
	resolver, cache := newResolver(backend)
	ctx := context.Background()

	res := resolver.Resolve(ctx, "u1", "")
	if res.Role != domain.RoleAgent || res.Source != SourceDefault {
		t.Fatalf("got %+v, want agent by default", res)
	}
	if backend.supervisorCalls != 3 {
		t.Fatalf("supervisor checks = %d, want 3", backend.supervisorCalls)
	}
	// The permissive default is never cached.
	if _, _, ok := cache.Get(ctx, "u1"); ok {
		t.Fatal("default resolution must not be cached")
	}
}

func TestResolveCacheExpiry(t *testing.T) {
	backend := &fakeBackend{supervisor: true}
	cache := repository.NewMemoryCredentialCache(30 * time.Minute)
	resolver := NewCredentialResolver(cache, backend, 3, zap.NewNop())
	ctx := context.Background()

	now := time.Now()
	cache.Now = func() time.Time { return now }

	resolver.Resolve(ctx, "u1", "")
	if backend.supervisorCalls != 1 {
		t.Fatalf("supervisor checks = %d, want 1", backend.supervisorCalls)
	}

	// Within the window the cache answers.
	now = now.Add(29 * time.Minute)
	resolver.Resolve(ctx, "u1", "")
	if backend.supervisorCalls != 1 {
		t.Fatal("cache should still be valid at 29 minutes")
	}

	// Past the window the backend is consulted again.
	now = now.Add(2 * time.Minute)
	resolver.Resolve(ctx, "u1", "")
	if backend.supervisorCalls != 2 {
		t.Fatalf("supervisor checks = %d, want 2 after expiry", backend.supervisorCalls)
	}
}

func TestInvalidateDropsCachedEntry(t *testing.T) {
	backend := &fakeBackend{supervisor: true}
	resolver, cache := newResolver(backend)
	ctx := context.Background()

	resolver.Resolve(ctx, "u1", "")
	resolver.Invalidate(ctx, "u1")
	if _, _, ok := cache.Get(ctx, "u1"); ok {
		t.Fatal("entry survived invalidation")
	}
}
