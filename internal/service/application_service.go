package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/remotereps/agent-onboarding/internal/domain"
	"github.com/remotereps/agent-onboarding/internal/events"
	"github.com/remotereps/agent-onboarding/internal/repository"
	"github.com/remotereps/agent-onboarding/internal/storage"
	apperrors "github.com/remotereps/agent-onboarding/pkg/util"
)

const pgUniqueViolation = "23505"

// ApplicationService drives the signup wizard state machine and the
// submission pipeline.
type ApplicationService struct {
	profiles   repository.ProfileRepository
	drafts     repository.DraftStore
	store      storage.ObjectStore
	authSvc    *AuthService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ApplicationDependencies bundles requirements for the application service.
type ApplicationDependencies struct {
	ProfileRepo repository.ProfileRepository
	DraftStore  repository.DraftStore
	ObjectStore storage.ObjectStore
	AuthService *AuthService
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		profiles:   deps.ProfileRepo,
		drafts:     deps.DraftStore,
		store:      deps.ObjectStore,
		authSvc:    deps.AuthService,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// EntryDecision is the wizard mount guard outcome.
type EntryDecision struct {
	// Redirect is empty when the wizard should render, otherwise "dashboard"
	// or "login".
	Redirect string
	// SignOut instructs the caller to terminate the active session.
	SignOut bool
	Draft   *domain.WizardDraft
}

// Begin applies the entry guard and opens a draft. An approved applicant is
// forwarded to the dashboard; a rejected one is signed out; anyone else with
// a session resumes past the intro step.
func (s *ApplicationService) Begin(ctx context.Context, existing *domain.Profile) (*EntryDecision, error) {
	if existing != nil {
		switch existing.ApplicationStatus {
		case domain.ApplicationStatusApproved:
			return &EntryDecision{Redirect: "dashboard"}, nil
		case domain.ApplicationStatusRejected:
			return &EntryDecision{Redirect: "login", SignOut: true}, nil
		}
	}

	draft := &domain.WizardDraft{
		SessionID:      uuid.NewString(),
		Step:           domain.StepIntro,
		StagedEvidence: map[domain.EvidenceKind]string{},
		CreatedAt:      s.now(),
	}
	if existing != nil {
		draft.Step = domain.StepPersonal
		draft.Email = existing.Email
		draft.FirstName = existing.FirstName
		draft.LastName = existing.LastName
	}
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return &EntryDecision{Draft: draft}, nil
}

// Draft loads the current draft for a wizard session.
func (s *ApplicationService) Draft(ctx context.Context, sessionID string) (*domain.WizardDraft, error) {
	draft, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return nil, apperrors.NewNotFound("wizard session", nil)
		}
		return nil, err
	}
	return draft, nil
}

// PersonalInput is the step 1 payload.
type PersonalInput struct {
	FirstName    string
	LastName     string
	Email        string
	Password     string
	BirthDate    string
	GovernmentID string
}

// EquipmentInput is the step 2 payload.
type EquipmentInput struct {
	CPU               string
	RAM               string
	HasHeadset        *bool
	HasQuietPlace     *bool
	SalesExperience   string
	ServiceExperience string
}

// AvailabilityInput is the step 3 payload.
type AvailabilityInput struct {
	AvailableDays []string
	DayHours      map[string]domain.HourBucket

	MeetObligation   *bool
	LoginDiscord     *bool
	CheckEmails      *bool
	SolveProblems    *bool
	CompleteTraining *bool

	PersonalStatement string
	AcceptedTerms     bool
}

// SavePersonal stores the step 1 fields on the draft.
func (s *ApplicationService) SavePersonal(ctx context.Context, sessionID string, in PersonalInput) (*domain.WizardDraft, error) {
	draft, err := s.Draft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	draft.FirstName = strings.TrimSpace(in.FirstName)
	draft.LastName = strings.TrimSpace(in.LastName)
	draft.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Password != "" {
		draft.Password = in.Password
	}
	draft.BirthDate = strings.TrimSpace(in.BirthDate)
	draft.GovernmentID = strings.TrimSpace(in.GovernmentID)
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SaveEquipment stores the step 2 fields on the draft.
func (s *ApplicationService) SaveEquipment(ctx context.Context, sessionID string, in EquipmentInput) (*domain.WizardDraft, error) {
	draft, err := s.Draft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	draft.CPU = strings.TrimSpace(in.CPU)
	draft.RAM = strings.TrimSpace(in.RAM)
	if in.HasHeadset != nil {
		draft.HasHeadset = domain.AnswerFromBool(*in.HasHeadset)
	}
	if in.HasQuietPlace != nil {
		draft.HasQuietPlace = domain.AnswerFromBool(*in.HasQuietPlace)
	}
	draft.SalesExperience = in.SalesExperience
	draft.ServiceExperience = in.ServiceExperience
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// SaveAvailability stores the step 3 fields on the draft.
func (s *ApplicationService) SaveAvailability(ctx context.Context, sessionID string, in AvailabilityInput) (*domain.WizardDraft, error) {
	draft, err := s.Draft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	days := make([]string, 0, len(in.AvailableDays))
	for _, day := range in.AvailableDays {
		day = strings.ToLower(strings.TrimSpace(day))
		if domain.ValidWeekday(day) {
			days = append(days, day)
		}
	}
	draft.AvailableDays = days
	hours := make(map[string]domain.HourBucket, len(in.DayHours))
	for day, bucket := range in.DayHours {
		day = strings.ToLower(strings.TrimSpace(day))
		if domain.ValidWeekday(day) && domain.ValidHourBucket(bucket) {
			hours[day] = bucket
		}
	}
	draft.DayHours = hours

	if in.MeetObligation != nil {
		draft.MeetObligation = domain.AnswerFromBool(*in.MeetObligation)
	}
	if in.LoginDiscord != nil {
		draft.LoginDiscord = domain.AnswerFromBool(*in.LoginDiscord)
	}
	if in.CheckEmails != nil {
		draft.CheckEmails = domain.AnswerFromBool(*in.CheckEmails)
	}
	if in.SolveProblems != nil {
		draft.SolveProblems = domain.AnswerFromBool(*in.SolveProblems)
	}
	if in.CompleteTraining != nil {
		draft.CompleteTraining = domain.AnswerFromBool(*in.CompleteTraining)
	}

	draft.PersonalStatement = strings.TrimSpace(in.PersonalStatement)
	draft.AcceptedTerms = in.AcceptedTerms
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// StageEvidence stores an uploaded evidence image pending submission.
func (s *ApplicationService) StageEvidence(ctx context.Context, sessionID string, kind domain.EvidenceKind, filename string, data []byte) (*domain.WizardDraft, error) {
	if !domain.ValidEvidenceKind(kind) {
		return nil, apperrors.NewValidationError("unknown evidence kind", nil)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("empty upload", nil)
	}
	draft, err := s.Draft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	key, err := s.store.Stage(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	if prev, ok := draft.StagedEvidence[kind]; ok {
		_ = s.store.Discard(ctx, prev)
	}
	if draft.StagedEvidence == nil {
		draft.StagedEvidence = map[domain.EvidenceKind]string{}
	}
	draft.StagedEvidence[kind] = key
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Advance validates the current step and moves the wizard forward one step.
// The availability step advances only through Submit.
func (s *ApplicationService) Advance(ctx context.Context, sessionID string) (*domain.WizardDraft, error) {
	draft, err := s.Draft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch draft.Step {
	case domain.StepIntro:
		// nothing to validate on the consent intro
	case domain.StepPersonal:
		if err := s.ValidatePersonalStep(ctx, draft); err != nil {
			return nil, err
		}
	case domain.StepEquipment:
		if err := ValidateEquipmentStep(draft); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewValidationError("submit the application to continue", nil)
	}
	draft.Step++
	if draft.Step > domain.StepConfirmation {
		draft.Step = domain.StepConfirmation
	}
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Back moves the wizard one step backward, clamped at the intro step.
func (s *ApplicationService) Back(ctx context.Context, sessionID string) (*domain.WizardDraft, error) {
	draft, err := s.Draft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.Step > domain.StepIntro {
		draft.Step--
	}
	if err := s.drafts.Put(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// ValidatePersonalStep checks the step 1 rules, including the duplicate
// government-ID lookup. A failed lookup does not block the applicant; the
// submission re-check and the database index still stand behind it.
func (s *ApplicationService) ValidatePersonalStep(ctx context.Context, draft *domain.WizardDraft) error {
	if draft.FirstName == "" || draft.LastName == "" {
		return apperrors.NewValidationError("first and last name are required", nil)
	}
	if draft.Email == "" {
		return apperrors.NewValidationError("email is required", nil)
	}
	if draft.Password == "" {
		return apperrors.NewValidationError("password is required", nil)
	}
	if draft.BirthDate == "" {
		return apperrors.NewValidationError("birth date is required", nil)
	}
	if !draft.HasEvidence(domain.EvidenceIDImage) {
		return apperrors.NewValidationError("ID photo is required", nil)
	}
	if draft.GovernmentID == "" {
		return apperrors.NewValidationError("ID number is required", nil)
	}

	exists, err := s.profiles.GovernmentIDExists(ctx, draft.GovernmentID, draft.Email)
	if err != nil {
		s.logger.Warn("duplicate ID pre-check failed; allowing progression",
			zap.String("session_id", draft.SessionID), zap.Error(err))
		return nil
	}
	if exists {
		return duplicateIDError()
	}
	return nil
}

// ValidateEquipmentStep checks the step 2 rules.
func ValidateEquipmentStep(draft *domain.WizardDraft) error {
	if draft.CPU == "" {
		return apperrors.NewValidationError("processor description is required", nil)
	}
	if draft.RAM == "" {
		return apperrors.NewValidationError("memory description is required", nil)
	}
	if !draft.HasHeadset.Answered() {
		return apperrors.NewValidationError("headset question must be answered", nil)
	}
	if !draft.HasQuietPlace.Answered() {
		return apperrors.NewValidationError("quiet workspace question must be answered", nil)
	}
	if !draft.HasEvidence(domain.EvidenceSpeedTest) {
		return apperrors.NewValidationError("speed test screenshot is required", nil)
	}
	if !draft.HasEvidence(domain.EvidenceSystemSettings) {
		return apperrors.NewValidationError("system settings screenshot is required", nil)
	}
	return nil
}

// ValidateAvailabilityStep checks the step 3 rules in their reporting order:
// availability, then hours, then commitments, then statement, then terms.
func ValidateAvailabilityStep(draft *domain.WizardDraft) error {
	if len(draft.AvailableDays) == 0 {
		return apperrors.NewValidationError("select at least one available day", nil)
	}
	for _, day := range draft.AvailableDays {
		if _, ok := draft.DayHours[day]; !ok {
			return apperrors.NewValidationError("choose hours for each selected day", map[string]any{"day": day})
		}
	}
	commitments := []domain.Answer{
		draft.MeetObligation,
		draft.LoginDiscord,
		draft.CheckEmails,
		draft.SolveProblems,
		draft.CompleteTraining,
	}
	for _, answer := range commitments {
		if !answer.Answered() {
			return apperrors.NewValidationError("answer every commitment question", nil)
		}
	}
	if draft.PersonalStatement == "" {
		return apperrors.NewValidationError("personal statement is required", nil)
	}
	if !draft.AcceptedTerms {
		return apperrors.NewValidationError("terms must be accepted", nil)
	}
	return nil
}

// SubmitResult reports the submission outcome.
type SubmitResult struct {
	Status  domain.ApplicationStatus
	Profile *domain.Profile
	// SignOut instructs the caller to terminate any active session.
	SignOut bool
	// Token is a fresh session for newly approved signups without one.
	Token          string
	TokenExpiresAt time.Time
}

// Submit runs the submission pipeline: duplicate re-check, evidence
// promotion, decision, account creation or profile update, and routing.
func (s *ApplicationService) Submit(ctx context.Context, sessionID string, existing *domain.Profile) (*SubmitResult, error) {
	draft, err := s.Draft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if draft.Step != domain.StepAvailability {
		return nil, apperrors.NewValidationError("complete the previous steps first", nil)
	}
	if err := ValidateAvailabilityStep(draft); err != nil {
		return nil, err
	}

	// Re-check closes the gap between step 1 validation and now. A confirmed
	// duplicate is fatal; a failed lookup falls through to the DB index.
	excludeEmail := draft.Email
	if existing != nil {
		excludeEmail = existing.Email
	}
	exists, err := s.profiles.GovernmentIDExists(ctx, draft.GovernmentID, excludeEmail)
	if err != nil {
		s.logger.Warn("duplicate ID re-check failed; proceeding",
			zap.String("session_id", sessionID), zap.Error(err))
	} else if exists {
		return nil, duplicateIDError()
	}

	urls := s.promoteEvidence(ctx, draft)
	status := DecideStatus(GatesFromDraft(draft))

	profile, err := s.persist(ctx, draft, existing, status, urls)
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("draft cleanup failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	s.publish(ctx, events.EventApplicationSubmitted, profile.ID, events.ApplicationSubmittedPayload{
		Email:  profile.Email,
		Status: status,
	})
	result := &SubmitResult{Status: status, Profile: profile}
	if status == domain.ApplicationStatusRejected {
		s.publish(ctx, events.EventApplicationRejected, profile.ID, nil)
		result.SignOut = true
		return result, nil
	}

	s.publish(ctx, events.EventApplicationApproved, profile.ID, nil)
	if existing == nil {
		token, exp, err := s.authSvc.IssueToken(ctx, profile)
		if err != nil {
			// The application is saved; the user can sign in manually.
			s.logger.Warn("post-signup token issue failed", zap.Error(err))
		} else {
			result.Token = token
			result.TokenExpiresAt = exp
		}
	}
	return result, nil
}

// promoteEvidence turns staged uploads into stable URLs. A failed promotion
// degrades to an empty reference rather than aborting the submission.
func (s *ApplicationService) promoteEvidence(ctx context.Context, draft *domain.WizardDraft) map[domain.EvidenceKind]string {
	urls := make(map[domain.EvidenceKind]string, len(draft.StagedEvidence))
	for kind, key := range draft.StagedEvidence {
		url, err := s.store.Promote(ctx, key)
		if err != nil {
			s.logger.Warn("evidence upload failed; storing empty reference",
				zap.String("session_id", draft.SessionID),
				zap.String("kind", string(kind)),
				zap.Error(err))
			continue
		}
		urls[kind] = url
	}
	return urls
}

func (s *ApplicationService) persist(ctx context.Context, draft *domain.WizardDraft, existing *domain.Profile, status domain.ApplicationStatus, urls map[domain.EvidenceKind]string) (*domain.Profile, error) {
	var profile *domain.Profile
	if existing != nil {
		profile = existing
	} else {
		hash, err := s.authSvc.HashPassword(draft.Password)
		if err != nil {
			return nil, submissionFailed(err)
		}
		profile = &domain.Profile{
			Email:        draft.Email,
			PasswordHash: hash,
			Credentials:  domain.RoleApplicant,
		}
	}

	applyDraft(profile, draft, status, urls)

	var err error
	if existing != nil {
		err = s.profiles.Update(ctx, profile)
	} else {
		err = s.profiles.Upsert(ctx, profile)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "government_id") {
				return nil, duplicateIDError()
			}
			return nil, apperrors.NewConflict("an account with this email already exists", nil)
		}
		return nil, submissionFailed(err)
	}
	return profile, nil
}

func applyDraft(p *domain.Profile, d *domain.WizardDraft, status domain.ApplicationStatus, urls map[domain.EvidenceKind]string) {
	p.FirstName = d.FirstName
	p.LastName = d.LastName
	p.BirthDate = d.BirthDate
	p.GovernmentID = d.GovernmentID
	p.CPU = d.CPU
	p.RAM = d.RAM
	p.HasHeadset = d.HasHeadset
	p.HasQuietPlace = d.HasQuietPlace
	p.AvailableDays = d.AvailableDays
	p.DayHours = d.DayHours
	p.SalesExperience = d.SalesExperience
	p.ServiceExperience = d.ServiceExperience
	p.MeetObligation = d.MeetObligation
	p.LoginDiscord = d.LoginDiscord
	p.CheckEmails = d.CheckEmails
	p.SolveProblems = d.SolveProblems
	p.CompleteTraining = d.CompleteTraining
	p.PersonalStatement = d.PersonalStatement
	p.AcceptedTerms = d.AcceptedTerms
	p.ApplicationStatus = status
	if url, ok := urls[domain.EvidenceIDImage]; ok {
		p.IDImageURL = url
	}
	if url, ok := urls[domain.EvidenceSpeedTest]; ok {
		p.SpeedTestURL = url
	}
	if url, ok := urls[domain.EvidenceSystemSettings]; ok {
		p.SystemSettingsURL = url
	}
}

func (s *ApplicationService) publish(ctx context.Context, eventType events.EventType, profileID string, payload interface{}) {
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

func duplicateIDError() error {
	return apperrors.NewConflict("this ID number is already registered", map[string]any{
		"field": "government_id",
	})
}

func submissionFailed(err error) error {
	de := apperrors.NewDomainError("SUBMISSION_FAILED", "submission failed, please try again", http.StatusInternalServerError, nil)
	de.Err = err
	return de
}
