package domain

import "time"

// ApplicationStatus is the outcome of the onboarding decision rule.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// Role governs which dashboard and API surface a user may reach.
type Role string

const (
	RoleApplicant  Role = "applicant"
	RoleAgent      Role = "agent"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// ValidRole reports whether r is a known role value.
func ValidRole(r Role) bool {
	switch r {
	case RoleApplicant, RoleAgent, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// AgentStanding enumerates supervisor-assigned standing values.
type AgentStanding string

const (
	StandingGood       AgentStanding = "good"
	StandingProbation  AgentStanding = "probation"
	StandingTerminated AgentStanding = "terminated"
)

// Profile is the single persisted record per user, aggregating identity,
// equipment, availability, training and administrative data.
type Profile struct {
	ID           string
	Email        string
	PasswordHash string

	// Identity
	FirstName    string
	LastName     string
	BirthDate    string
	GovernmentID string
	IDImageURL   string

	// Equipment / environment
	CPU               string
	RAM               string
	HasHeadset        Answer
	HasQuietPlace     Answer
	SpeedTestURL      string
	SystemSettingsURL string

	// Availability
	AvailableDays     []string
	DayHours          map[string]HourBucket
	SalesExperience   string
	ServiceExperience string

	// Commitments (each must be explicitly answered before submission)
	MeetObligation   Answer
	LoginDiscord     Answer
	CheckEmails      Answer
	SolveProblems    Answer
	CompleteTraining Answer

	// Consent
	PersonalStatement string
	AcceptedTerms     bool

	// Derived at submission time, never recomputed afterward.
	ApplicationStatus ApplicationStatus

	// Training gate
	VideoWatched bool
	QuizPassed   *bool
	QuizScore    int

	Credentials Role

	// Supervisor-editable administrative fields
	AgentID         string
	AgentStanding   AgentStanding
	LeadSource      string
	StartDate       *time.Time
	SupervisorNotes string

	// Banking; only last-4 views are ever rendered back.
	RoutingNumber string
	AccountNumber string
	AccountType   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaskedBanking is the read view of banking details.
type MaskedBanking struct {
	RoutingLast4 string
	AccountLast4 string
	AccountType  string
}

// Banking returns the masked view of the stored banking fields.
func (p *Profile) Banking() MaskedBanking {
	return MaskedBanking{
		RoutingLast4: last4(p.RoutingNumber),
		AccountLast4: last4(p.AccountNumber),
		AccountType:  p.AccountType,
	}
}

func last4(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}

// AdminFields are the fields a supervisor may edit on another user's row,
// independent of applicant-submitted data.
type AdminFields struct {
	AgentID         string
	AgentStanding   AgentStanding
	LeadSource      string
	StartDate       *time.Time
	SupervisorNotes string
}
