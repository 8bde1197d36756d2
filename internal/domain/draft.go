package domain

import "time"

// Wizard step indices. Transitions are strictly linear (+/-1) and clamped.
const (
	StepIntro        = 0
	StepPersonal     = 1
	StepEquipment    = 2
	StepAvailability = 3
	StepConfirmation = 4
)

// EvidenceKind identifies one of the three uploaded evidence images.
type EvidenceKind string

const (
	EvidenceIDImage        EvidenceKind = "id_image"
	EvidenceSpeedTest      EvidenceKind = "speed_test"
	EvidenceSystemSettings EvidenceKind = "system_settings"
)

// ValidEvidenceKind reports whether k names a known evidence slot.
func ValidEvidenceKind(k EvidenceKind) bool {
	switch k {
	case EvidenceIDImage, EvidenceSpeedTest, EvidenceSystemSettings:
		return true
	}
	return false
}

// WizardDraft holds everything an applicant has entered so far. Drafts live
// in the draft store keyed by wizard session until submission.
type WizardDraft struct {
	SessionID string `json:"session_id"`
	Step      int    `json:"step"`

	// Step 1: personal info
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	BirthDate    string `json:"birth_date"`
	GovernmentID string `json:"government_id"`

	// Step 2: equipment / experience
	CPU               string `json:"cpu"`
	RAM               string `json:"ram"`
	HasHeadset        Answer `json:"has_headset"`
	HasQuietPlace     Answer `json:"has_quiet_place"`
	SalesExperience   string `json:"sales_experience"`
	ServiceExperience string `json:"service_experience"`

	// Step 3: availability / commitments / consent
	AvailableDays []string              `json:"available_days"`
	DayHours      map[string]HourBucket `json:"day_hours"`

	MeetObligation   Answer `json:"meet_obligation"`
	LoginDiscord     Answer `json:"login_discord"`
	CheckEmails      Answer `json:"check_emails"`
	SolveProblems    Answer `json:"solve_problems"`
	CompleteTraining Answer `json:"complete_training"`

	PersonalStatement string `json:"personal_statement"`
	AcceptedTerms     bool   `json:"accepted_terms"`

	// Staged evidence uploads, promoted to stable URLs at submission.
	StagedEvidence map[EvidenceKind]string `json:"staged_evidence"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasEvidence reports whether an upload was staged for the given slot.
func (d *WizardDraft) HasEvidence(kind EvidenceKind) bool {
	if d.StagedEvidence == nil {
		return false
	}
	_, ok := d.StagedEvidence[kind]
	return ok
}
