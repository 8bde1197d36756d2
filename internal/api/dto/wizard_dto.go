package dto

import (
	"github.com/remotereps/agent-onboarding/internal/domain"
)

// PersonalStepRequest is the step 1 payload.
type PersonalStepRequest struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	BirthDate    string `json:"birth_date"`
	GovernmentID string `json:"government_id"`
}

// EquipmentStepRequest is the step 2 payload.
type EquipmentStepRequest struct {
	CPU               string `json:"cpu"`
	RAM               string `json:"ram"`
	HasHeadset        *bool  `json:"has_headset"`
	HasQuietPlace     *bool  `json:"has_quiet_place"`
	SalesExperience   string `json:"sales_experience"`
	ServiceExperience string `json:"service_experience"`
}

// AvailabilityStepRequest is the step 3 payload.
type AvailabilityStepRequest struct {
	AvailableDays []string                     `json:"available_days"`
	DayHours      map[string]domain.HourBucket `json:"day_hours"`

	MeetObligation   *bool `json:"meet_obligation"`
	LoginDiscord     *bool `json:"login_discord"`
	CheckEmails      *bool `json:"check_emails"`
	SolveProblems    *bool `json:"solve_problems"`
	CompleteTraining *bool `json:"complete_training"`

	PersonalStatement string `json:"personal_statement"`
	AcceptedTerms     bool   `json:"accepted_terms"`
}

// DraftView is the wizard state rendered back to the client. The password
// never leaves the server; staged uploads render as presence flags.
type DraftView struct {
	SessionID string `json:"session_id"`
	Step      int    `json:"step"`

	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	BirthDate    string `json:"birth_date"`
	GovernmentID string `json:"government_id"`

	CPU               string `json:"cpu"`
	RAM               string `json:"ram"`
	HasHeadset        string `json:"has_headset"`
	HasQuietPlace     string `json:"has_quiet_place"`
	SalesExperience   string `json:"sales_experience"`
	ServiceExperience string `json:"service_experience"`

	AvailableDays []string                     `json:"available_days"`
	DayHours      map[string]domain.HourBucket `json:"day_hours"`

	MeetObligation   string `json:"meet_obligation"`
	LoginDiscord     string `json:"login_discord"`
	CheckEmails      string `json:"check_emails"`
	SolveProblems    string `json:"solve_problems"`
	CompleteTraining string `json:"complete_training"`

	PersonalStatement string `json:"personal_statement"`
	AcceptedTerms     bool   `json:"accepted_terms"`

	Evidence map[string]bool `json:"evidence"`
}

// NewDraftView converts a draft to its client view.
func NewDraftView(d *domain.WizardDraft) DraftView {
	evidence := make(map[string]bool, 3)
	for _, kind := range []domain.EvidenceKind{
		domain.EvidenceIDImage,
		domain.EvidenceSpeedTest,
		domain.EvidenceSystemSettings,
	} {
		evidence[string(kind)] = d.HasEvidence(kind)
	}
	return DraftView{
		SessionID:         d.SessionID,
		Step:              d.Step,
		FirstName:         d.FirstName,
		LastName:          d.LastName,
		Email:             d.Email,
		BirthDate:         d.BirthDate,
		GovernmentID:      d.GovernmentID,
		CPU:               d.CPU,
		RAM:               d.RAM,
		HasHeadset:        string(d.HasHeadset),
		HasQuietPlace:     string(d.HasQuietPlace),
		SalesExperience:   d.SalesExperience,
		ServiceExperience: d.ServiceExperience,
		AvailableDays:     d.AvailableDays,
		DayHours:          d.DayHours,
		MeetObligation:    string(d.MeetObligation),
		LoginDiscord:      string(d.LoginDiscord),
		CheckEmails:       string(d.CheckEmails),
		SolveProblems:     string(d.SolveProblems),
		CompleteTraining:  string(d.CompleteTraining),
		PersonalStatement: d.PersonalStatement,
		AcceptedTerms:     d.AcceptedTerms,
		Evidence:          evidence,
	}
}

// SubmitResponse reports the submission outcome.
type SubmitResponse struct {
	Status   string        `json:"status"`
	Redirect string        `json:"redirect"`
	SignOut  bool          `json:"sign_out"`
	Auth     *AuthResponse `json:"auth,omitempty"`
}

// EntryResponse is the wizard entry-guard outcome.
type EntryResponse struct {
	Redirect string     `json:"redirect,omitempty"`
	SignOut  bool       `json:"sign_out,omitempty"`
	Draft    *DraftView `json:"draft,omitempty"`
}
