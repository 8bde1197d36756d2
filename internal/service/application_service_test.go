package service

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/events"
	"github.com/remotereps/agent-onboarding/internal/repository"
	"github.com/remotereps/agent-onboarding/internal/storage"
	apperrors "github.com/remotereps/agent-onboarding/pkg/util"
)

type appFixture struct {
	svc    *ApplicationService
	repo   *fakeProfileRepo
	drafts *repository.MemoryDraftStore
	store  *storage.MemoryStore
	disp   *recordingDispatcher
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	repo := newFakeProfileRepo()
	cache := repository.NewMemoryCredentialCache(30 * time.Minute)
	resolver := NewCredentialResolver(cache, repo, 3, zap.NewNop())
	authSvc := NewAuthService(testConfig(), AuthDependencies{ProfileRepo: repo, Resolver: resolver})

	drafts := repository.NewMemoryDraftStore()
	store := storage.NewMemoryStore("http://files.test/uploads")
	disp := &recordingDispatcher{}
	svc := NewApplicationService(ApplicationDependencies{
		ProfileRepo: repo,
		DraftStore:  drafts,
		ObjectStore: store,
		AuthService: authSvc,
		Dispatcher:  disp,
		Logger:      zap.NewNop(),
	})
	return &appFixture{svc: svc, repo: repo, drafts: drafts, store: store, disp: disp}
}

func (f *appFixture) stage(t *testing.T, session string, kind domain.EvidenceKind) {
	t.Helper()
	if _, err := f.svc.StageEvidence(context.Background(), session, kind, string(kind)+".png", []byte("img")); err != nil {
		t.Fatalf("stage %s: %v", kind, err)
	}
}

var yes = true
var no = false

func personalInput() PersonalInput {
	return PersonalInput{
		FirstName:    "Ada",
		LastName:     "Diaz",
		Email:        "Ada@Example.com",
		Password:     "hunter22",
		BirthDate:    "1990-04-02",
		GovernmentID: "ID-1234",
	}
}

func availabilityInput(completeTraining *bool) AvailabilityInput {
	return AvailabilityInput{
		AvailableDays: []string{"monday", "tuesday"},
		DayHours: map[string]domain.HourBucket{
			"monday":  domain.HoursMorning,
			"tuesday": domain.HoursAfternoon,
		},
		MeetObligation:    &yes,
		LoginDiscord:      &yes,
		CheckEmails:       &yes,
		SolveProblems:     &yes,
		CompleteTraining:  completeTraining,
		PersonalStatement: "I have run support queues for three years.",
		AcceptedTerms:     true,
	}
}

// buildSubmittableDraft walks a session through every step so it sits at the
// availability step ready to submit.
func (f *appFixture) buildSubmittableDraft(t *testing.T, existing *domain.Profile, completeTraining *bool) string {
	t.Helper()
	ctx := context.Background()

	decision, err := f.svc.Begin(ctx, existing)
	if err != nil {
		t.Fatal(err)
	}
	session := decision.Draft.SessionID
	if existing == nil {
		if _, err := f.svc.Advance(ctx, session); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := f.svc.SavePersonal(ctx, session, personalInput()); err != nil {
		t.Fatal(err)
	}
	f.stage(t, session, domain.EvidenceIDImage)
	if _, err := f.svc.Advance(ctx, session); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.SaveEquipment(ctx, session, EquipmentInput{
		CPU:           "Ryzen 5 5600",
		RAM:           "16GB",
		HasHeadset:    &yes,
		HasQuietPlace: &yes,
	}); err != nil {
		t.Fatal(err)
	}
	f.stage(t, session, domain.EvidenceSpeedTest)
	f.stage(t, session, domain.EvidenceSystemSettings)
	if _, err := f.svc.Advance(ctx, session); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.SaveAvailability(ctx, session, availabilityInput(completeTraining)); err != nil {
		t.Fatal(err)
	}
	return session
}

func TestBeginEntryGuard(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	decision, err := f.svc.Begin(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Redirect != "" || decision.Draft == nil || decision.Draft.Step != domain.StepIntro {
		t.Fatalf("anonymous entry: %+v", decision)
	}

	approved := &domain.Profile{ApplicationStatus: domain.ApplicationStatusApproved}
	decision, err = f.svc.Begin(ctx, approved)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Redirect != "dashboard" || decision.SignOut {
		t.Fatalf("approved entry: %+v", decision)
	}

	rejected := &domain.Profile{ApplicationStatus: domain.ApplicationStatusRejected}
	decision, err = f.svc.Begin(ctx, rejected)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Redirect != "login" || !decision.SignOut {
		t.Fatalf("rejected entry: %+v", decision)
	}

	pending := &domain.Profile{
		Email:             "pending@example.com",
		FirstName:         "Pat",
		ApplicationStatus: domain.ApplicationStatusPending,
	}
	decision, err = f.svc.Begin(ctx, pending)
	if err != nil {
		t.Fatal(err)
	}
	if decision.Draft == nil || decision.Draft.Step != domain.StepPersonal {
		t.Fatalf("pending entry should skip the intro: %+v", decision)
	}
	if decision.Draft.Email != "pending@example.com" || decision.Draft.FirstName != "Pat" {
		t.Fatalf("pending draft not prefilled: %+v", decision.Draft)
	}
}

func TestAdvanceValidatesPersonalStep(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	decision, err := f.svc.Begin(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	session := decision.Draft.SessionID
	if _, err := f.svc.Advance(ctx, session); err != nil {
		t.Fatal(err)
	}

	// Empty form stops on the name check.
	if _, err := f.svc.Advance(ctx, session); err == nil {
		t.Fatal("empty personal step advanced")
	}

	in := personalInput()
	in.GovernmentID = ""
	if _, err := f.svc.SavePersonal(ctx, session, in); err != nil {
		t.Fatal(err)
	}
	f.stage(t, session, domain.EvidenceIDImage)
	if _, err := f.svc.Advance(ctx, session); err == nil {
		t.Fatal("missing ID number advanced")
	}

	if _, err := f.svc.SavePersonal(ctx, session, personalInput()); err != nil {
		t.Fatal(err)
	}
	draft, err := f.svc.Advance(ctx, session)
	if err != nil {
		t.Fatal(err)
	}
	if draft.Step != domain.StepEquipment {
		t.Fatalf("step = %d, want equipment", draft.Step)
	}
	if draft.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", draft.Email)
	}
}

func TestValidatePersonalStepIsIdempotent(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	decision, err := f.svc.Begin(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	session := decision.Draft.SessionID

	in := personalInput()
	in.GovernmentID = ""
	if _, err := f.svc.SavePersonal(ctx, session, in); err != nil {
		t.Fatal(err)
	}
	draft, err := f.svc.Draft(ctx, session)
	if err != nil {
		t.Fatal(err)
	}

	// Re-running the validator on the same unmodified draft yields the same
	// outcome and leaves the draft untouched.
	before := *draft
	first := f.svc.ValidatePersonalStep(ctx, draft)
	second := f.svc.ValidatePersonalStep(ctx, draft)
	if first == nil || second == nil {
		t.Fatal("missing ID number accepted")
	}
	if first.Error() != second.Error() {
		t.Fatalf("re-validation changed the outcome: %q then %q", first, second)
	}
	if !reflect.DeepEqual(before, *draft) {
		t.Fatalf("validation mutated the draft: %+v", draft)
	}
	stored, err := f.svc.Draft(ctx, session)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Step != before.Step {
		t.Fatalf("stored step moved from %d to %d", before.Step, stored.Step)
	}

	if _, err := f.svc.SavePersonal(ctx, session, personalInput()); err != nil {
		t.Fatal(err)
	}
	f.stage(t, session, domain.EvidenceIDImage)
	draft, err = f.svc.Draft(ctx, session)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.svc.ValidatePersonalStep(ctx, draft); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.ValidatePersonalStep(ctx, draft); err != nil {
		t.Fatalf("valid input failed on the second pass: %v", err)
	}
}

func TestPersonalStepBlocksDuplicateID(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.repo.add(&domain.Profile{Email: "other@example.com", GovernmentID: "ID-1234"})

	decision, _ := f.svc.Begin(ctx, nil)
	session := decision.Draft.SessionID
	f.svc.Advance(ctx, session)
	if _, err := f.svc.SavePersonal(ctx, session, personalInput()); err != nil {
		t.Fatal(err)
	}
	f.stage(t, session, domain.EvidenceIDImage)

	_, err := f.svc.Advance(ctx, session)
	if err == nil {
		t.Fatal("duplicate ID advanced")
	}
	if de := apperrors.ToDomainError(err); de.Code != "CONFLICT" {
		t.Fatalf("got code %s, want CONFLICT", de.Code)
	}
}

func TestPersonalStepLookupFailureAllowsProgression(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.repo.govIDErr = errBackendDown

	decision, _ := f.svc.Begin(ctx, nil)
	session := decision.Draft.SessionID
	f.svc.Advance(ctx, session)
	if _, err := f.svc.SavePersonal(ctx, session, personalInput()); err != nil {
		t.Fatal(err)
	}
	f.stage(t, session, domain.EvidenceIDImage)

	if _, err := f.svc.Advance(ctx, session); err != nil {
		t.Fatalf("lookup failure must not block the applicant: %v", err)
	}
}

func TestBackClampsAtIntro(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	decision, _ := f.svc.Begin(ctx, nil)
	session := decision.Draft.SessionID
	for i := 0; i < 3; i++ {
		draft, err := f.svc.Back(ctx, session)
		if err != nil {
			t.Fatal(err)
		}
		if draft.Step != domain.StepIntro {
			t.Fatalf("step = %d, want intro", draft.Step)
		}
	}
}

func TestAdvanceStopsAtAvailability(t *testing.T) {
	f := newAppFixture(t)
	session := f.buildSubmittableDraft(t, nil, &yes)

	if _, err := f.svc.Advance(context.Background(), session); err == nil {
		t.Fatal("availability step advanced without submit")
	}
}

func TestStageEvidenceRejectsUnknownKind(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	decision, _ := f.svc.Begin(ctx, nil)

	if _, err := f.svc.StageEvidence(ctx, decision.Draft.SessionID, "selfie", "x.png", []byte("img")); err == nil {
		t.Fatal("unknown evidence kind accepted")
	}
	if _, err := f.svc.StageEvidence(ctx, decision.Draft.SessionID, domain.EvidenceIDImage, "x.png", nil); err == nil {
		t.Fatal("empty upload accepted")
	}
}

func TestValidateAvailabilityStepOrder(t *testing.T) {
	draft := &domain.WizardDraft{}
	check := func(wantSubstr string) {
		t.Helper()
		err := ValidateAvailabilityStep(draft)
		if err == nil {
			t.Fatalf("expected error %q, got nil", wantSubstr)
		}
		if de := apperrors.ToDomainError(err); de.Message != wantSubstr {
			t.Fatalf("got %q, want %q", de.Message, wantSubstr)
		}
	}

	check("select at least one available day")
	draft.AvailableDays = []string{"monday"}
	check("choose hours for each selected day")
	draft.DayHours = map[string]domain.HourBucket{"monday": domain.HoursEvening}
	check("answer every commitment question")
	draft.MeetObligation = domain.AnswerYes
	draft.LoginDiscord = domain.AnswerYes
	draft.CheckEmails = domain.AnswerNo
	draft.SolveProblems = domain.AnswerYes
	draft.CompleteTraining = domain.AnswerYes
	check("personal statement is required")
	draft.PersonalStatement = "statement"
	check("terms must be accepted")
	draft.AcceptedTerms = true
	if err := ValidateAvailabilityStep(draft); err != nil {
		t.Fatalf("complete step rejected: %v", err)
	}
}

func TestSubmitApprovesAllYes(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	session := f.buildSubmittableDraft(t, nil, &yes)

	result, err := f.svc.Submit(ctx, session, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != domain.ApplicationStatusApproved || result.SignOut {
		t.Fatalf("got %+v, want approved", result)
	}
	if result.Token == "" {
		t.Fatal("fresh signup should receive a session token")
	}

	stored, err := f.repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored.ApplicationStatus != domain.ApplicationStatusApproved {
		t.Fatalf("stored status = %s", stored.ApplicationStatus)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "hunter22" {
		t.Fatal("password not hashed")
	}
	if stored.IDImageURL == "" || stored.SpeedTestURL == "" || stored.SystemSettingsURL == "" {
		t.Fatalf("evidence URLs missing: %+v", stored)
	}

	if _, err := f.svc.Draft(ctx, session); err == nil {
		t.Fatal("draft survived submission")
	}

	types := f.disp.typesSeen()
	if len(types) != 2 || types[0] != events.EventApplicationSubmitted || types[1] != events.EventApplicationApproved {
		t.Fatalf("events = %v", types)
	}
}

func TestSubmitRejectsOnAnyNo(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	session := f.buildSubmittableDraft(t, nil, &no)

	result, err := f.svc.Submit(ctx, session, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != domain.ApplicationStatusRejected || !result.SignOut {
		t.Fatalf("got %+v, want rejected with sign-out", result)
	}
	if result.Token != "" {
		t.Fatal("rejected signup must not receive a token")
	}

	types := f.disp.typesSeen()
	if len(types) != 2 || types[1] != events.EventApplicationRejected {
		t.Fatalf("events = %v", types)
	}
}

func TestSubmitRequiresAvailabilityStep(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	decision, _ := f.svc.Begin(ctx, nil)

	if _, err := f.svc.Submit(ctx, decision.Draft.SessionID, nil); err == nil {
		t.Fatal("submit accepted from the intro step")
	}
}

func TestSubmitRechecksDuplicateID(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	session := f.buildSubmittableDraft(t, nil, &yes)

	// Another account claims the ID between step 1 and submission.
	f.repo.add(&domain.Profile{Email: "other@example.com", GovernmentID: "ID-1234"})

	_, err := f.svc.Submit(ctx, session, nil)
	if err == nil {
		t.Fatal("duplicate ID slipped through the re-check")
	}
	if de := apperrors.ToDomainError(err); de.Code != "CONFLICT" {
		t.Fatalf("got code %s, want CONFLICT", de.Code)
	}
}

func TestSubmitUploadFailureDegradesToEmptyReference(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	session := f.buildSubmittableDraft(t, nil, &yes)
	f.store.FailPromote = true

	result, err := f.svc.Submit(ctx, session, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != domain.ApplicationStatusApproved {
		t.Fatalf("upload failure aborted the submission: %+v", result)
	}
	stored, err := f.repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if stored.IDImageURL != "" || stored.SpeedTestURL != "" {
		t.Fatalf("failed uploads should store empty references: %+v", stored)
	}
}

func TestSubmitUpdatesExistingProfile(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	existing := f.repo.add(&domain.Profile{
		Email:             "ada@example.com",
		PasswordHash:      "existing-hash",
		ApplicationStatus: domain.ApplicationStatusPending,
		Credentials:       domain.RoleApplicant,
	})

	session := f.buildSubmittableDraft(t, existing, &yes)
	result, err := f.svc.Submit(ctx, session, existing)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != domain.ApplicationStatusApproved {
		t.Fatalf("got %s, want approved", result.Status)
	}
	if result.Token != "" {
		t.Fatal("existing session must not receive a fresh token")
	}

	stored, err := f.repo.GetByID(ctx, existing.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PasswordHash != "existing-hash" {
		t.Fatal("existing password hash overwritten")
	}
	if stored.ApplicationStatus != domain.ApplicationStatusApproved {
		t.Fatalf("stored status = %s", stored.ApplicationStatus)
	}
}
