package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/remotereps/agent-onboarding/internal/config"
	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/events"
)

var errBackendDown = errors.New("backend unavailable")

// fakeProfileRepo is an in-memory ProfileRepository for service tests.
type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	nextID   int

	govIDErr      error
	upsertErr     error
	supervisorErr error
	credsErr      error

	supervisorCalls int
	credsCalls      int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func (r *fakeProfileRepo) add(p *domain.Profile) *domain.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		r.nextID++
		p.ID = "profile-" + strconv.Itoa(r.nextID)
	}
	copied := *p
	r.profiles[p.ID] = &copied
	return p
}

func (r *fakeProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	r.add(p)
	return nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *p
	r.profiles[p.ID] = &copied
	return nil
}

func (r *fakeProfileRepo) Upsert(_ context.Context, p *domain.Profile) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.mu.Lock()
	for id, existing := range r.profiles {
		if existing.Email == p.Email {
			p.ID = id
		}
	}
	r.mu.Unlock()
	r.add(p)
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) GovernmentIDExists(_ context.Context, governmentID, excludeEmail string) (bool, error) {
	if r.govIDErr != nil {
		return false, r.govIDErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.GovernmentID != "" && p.GovernmentID == governmentID && p.Email != excludeEmail {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProfileRepo) IsSupervisor(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supervisorCalls++
	if r.supervisorErr != nil {
		return false, r.supervisorErr
	}
	p, ok := r.profiles[id]
	if !ok {
		return false, nil
	}
	return p.Credentials == domain.RoleSupervisor, nil
}

func (r *fakeProfileRepo) GetCredentials(_ context.Context, id string) (domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credsCalls++
	if r.credsErr != nil {
		return "", r.credsErr
	}
	p, ok := r.profiles[id]
	if !ok {
		return "", pgx.ErrNoRows
	}
	return p.Credentials, nil
}

func (r *fakeProfileRepo) SetPasswordHash(_ context.Context, id, hash string) error {
	return r.mutate(id, func(p *domain.Profile) { p.PasswordHash = hash })
}

func (r *fakeProfileRepo) SetVideoWatched(_ context.Context, id string) error {
	return r.mutate(id, func(p *domain.Profile) { p.VideoWatched = true })
}

func (r *fakeProfileRepo) SetQuizResult(_ context.Context, id string, score int, passed bool) error {
	return r.mutate(id, func(p *domain.Profile) {
		p.QuizScore = score
		p.QuizPassed = &passed
	})
}

func (r *fakeProfileRepo) UpdateBanking(_ context.Context, id, routing, account, accountType string) error {
	return r.mutate(id, func(p *domain.Profile) {
		p.RoutingNumber = routing
		p.AccountNumber = account
		p.AccountType = accountType
	})
}

func (r *fakeProfileRepo) UpdateAdminFields(_ context.Context, id string, fields domain.AdminFields) error {
	return r.mutate(id, func(p *domain.Profile) {
		p.AgentID = fields.AgentID
		if fields.AgentStanding != "" {
			p.AgentStanding = fields.AgentStanding
		}
		p.LeadSource = fields.LeadSource
		p.StartDate = fields.StartDate
		p.SupervisorNotes = fields.SupervisorNotes
	})
}

func (r *fakeProfileRepo) SearchAgents(_ context.Context, search string) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	search = strings.ToLower(search)
	var out []domain.Profile
	for _, p := range r.profiles {
		if search == "" ||
			strings.Contains(strings.ToLower(p.FirstName), search) ||
			strings.Contains(strings.ToLower(p.LastName), search) ||
			strings.Contains(strings.ToLower(p.GovernmentID), search) ||
			strings.Contains(string(p.ApplicationStatus), search) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) mutate(id string, fn func(*domain.Profile)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(p)
	return nil
}

// fakeBackend is a scripted ResolverBackend.
type fakeBackend struct {
	supervisor    bool
	supervisorErr error
	role          domain.Role
	roleErr       error

	supervisorCalls int
	credsCalls      int
}

func (b *fakeBackend) IsSupervisor(context.Context, string) (bool, error) {
	b.supervisorCalls++
	return b.supervisor, b.supervisorErr
}

func (b *fakeBackend) GetCredentials(context.Context, string) (domain.Role, error) {
	b.credsCalls++
	return b.role, b.roleErr
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) typesSeen() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	types := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		types = append(types, e.Type)
	}
	return types
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              4,
		},
		Training: config.TrainingConfig{
			VideoDurationSeconds: 600,
			SkipBufferSeconds:    3,
			FallbackDelaySeconds: 30,
			DraftTTLHours:        24,
		},
		Resolver: config.ResolverConfig{CacheTTLMinutes: 30, MaxAttempts: 3},
	}
}
