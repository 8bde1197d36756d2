package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/auth"
	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/repository"
	apperrors "github.com/remotereps/agent-onboarding/pkg/util"
)

// fakeResetRepo is an in-memory PasswordResetRepository.
type fakeResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*repository.PasswordResetToken
	nextID int
}

func newFakeResetRepo() *fakeResetRepo {
	return &fakeResetRepo{tokens: make(map[string]*repository.PasswordResetToken)}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	token.ID = "reset-" + strconv.Itoa(r.nextID)
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, apperrors.NewNotFound("reset token", nil)
	}
	copied := *token
	return &copied, nil
}

func (r *fakeResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, token := range r.tokens {
		if token.ID == id {
			token.UsedAt = &now
		}
	}
	return nil
}

// fakeDenylist records revoked token IDs.
type fakeDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newFakeDenylist() *fakeDenylist {
	return &fakeDenylist{revoked: make(map[string]bool)}
}

func (d *fakeDenylist) Revoke(_ context.Context, jti string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[jti] = true
	return nil
}

func (d *fakeDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[jti], nil
}

type authFixture struct {
	svc      *AuthService
	repo     *fakeProfileRepo
	resets   *fakeResetRepo
	denylist *fakeDenylist
	cache    *repository.MemoryCredentialCache
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newFakeProfileRepo()
	resets := newFakeResetRepo()
	denylist := newFakeDenylist()
	cache := repository.NewMemoryCredentialCache(30 * time.Minute)
	resolver := NewCredentialResolver(cache, repo, 3, zap.NewNop())
	svc := NewAuthService(testConfig(), AuthDependencies{
		ProfileRepo:       repo,
		PasswordResetRepo: resets,
		Denylist:          denylist,
		Resolver:          resolver,
	})
	return &authFixture{svc: svc, repo: repo, resets: resets, denylist: denylist, cache: cache}
}

func (f *authFixture) addUser(t *testing.T, email, password string, role domain.Role) *domain.Profile {
	t.Helper()
	hash, err := f.svc.HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	return f.repo.add(&domain.Profile{
		Email:             email,
		PasswordHash:      hash,
		Credentials:       role,
		ApplicationStatus: domain.ApplicationStatusApproved,
	})
}

func TestLoginIssuesResolvedRole(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "sup@example.com", "hunter22", domain.RoleSupervisor)

	profile, token, exp, err := f.svc.Login(context.Background(), "sup@example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if profile.Email != "sup@example.com" || token == "" || time.Until(exp) <= 0 {
		t.Fatalf("login result: profile=%v token=%q exp=%v", profile, token, exp)
	}

	claims, err := f.svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != domain.RoleSupervisor {
		t.Fatalf("role claim = %s, want supervisor", claims.Role)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.addUser(t, "a@example.com", "hunter22", domain.RoleAgent)

	if _, _, _, err := f.svc.Login(context.Background(), "a@example.com", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
	if _, _, _, err := f.svc.Login(context.Background(), "nobody@example.com", "hunter22"); err == nil {
		t.Fatal("unknown email accepted")
	}
}

func TestLogoutRevokesTokenAndDropsCache(t *testing.T) {
	f := newAuthFixture(t)
	profile := f.addUser(t, "a@example.com", "hunter22", domain.RoleAgent)
	ctx := context.Background()

	_, token, _, err := f.svc.Login(ctx, "a@example.com", "hunter22")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := f.svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, ok := f.cache.Get(ctx, profile.ID); !ok {
		t.Fatal("login did not prime the credential cache")
	}

	err = f.svc.Logout(ctx, &auth.Principal{Profile: profile, TokenID: claims.ID})
	if err != nil {
		t.Fatal(err)
	}
	if revoked, _ := f.denylist.IsRevoked(ctx, claims.ID); !revoked {
		t.Fatal("token not revoked")
	}
	if _, _, ok := f.cache.Get(ctx, profile.ID); ok {
		t.Fatal("credential cache survived logout")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	profile := f.addUser(t, "a@example.com", "old-password", domain.RoleAgent)
	ctx := context.Background()

	token, err := f.svc.RequestPasswordReset(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if token.ProfileID != profile.ID {
		t.Fatalf("token for wrong profile: %+v", token)
	}

	if err := f.svc.ConfirmPasswordReset(ctx, token.Token, "new-password"); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := f.svc.Login(ctx, "a@example.com", "new-password"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, _, _, err := f.svc.Login(ctx, "a@example.com", "old-password"); err == nil {
		t.Fatal("old password still accepted")
	}

	// Reset tokens are single use.
	if err := f.svc.ConfirmPasswordReset(ctx, token.Token, "another"); err == nil {
		t.Fatal("reset token reused")
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	f := newAuthFixture(t)
	profile := f.addUser(t, "a@example.com", "hunter22", domain.RoleAgent)
	ctx := context.Background()

	if err := f.svc.ChangePassword(ctx, profile.ID, "wrong", "next"); err == nil {
		t.Fatal("change accepted with wrong current password")
	}
	if err := f.svc.ChangePassword(ctx, profile.ID, "hunter22", "next-password"); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := f.svc.Login(ctx, "a@example.com", "next-password"); err != nil {
		t.Fatalf("changed password rejected: %v", err)
	}
}
