package dto

import (
	"time"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// AgentSummary is a roster row in the supervisor dashboard.
type AgentSummary struct {
	ID                string     `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	GovernmentID      string     `json:"government_id"`
	ApplicationStatus string     `json:"application_status"`
	AgentID           string     `json:"agent_id"`
	AgentStanding     string     `json:"agent_standing"`
	LeadSource        string     `json:"lead_source"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	SupervisorNotes   string     `json:"supervisor_notes"`
	QuizPassed        *bool      `json:"quiz_passed"`
	QuizScore         int        `json:"quiz_score"`
}

// NewAgentSummary converts a profile row.
func NewAgentSummary(p *domain.Profile) AgentSummary {
	return AgentSummary{
		ID:                p.ID,
		FirstName:         p.FirstName,
		LastName:          p.LastName,
		Email:             p.Email,
		GovernmentID:      p.GovernmentID,
		ApplicationStatus: string(p.ApplicationStatus),
		AgentID:           p.AgentID,
		AgentStanding:     string(p.AgentStanding),
		LeadSource:        p.LeadSource,
		StartDate:         p.StartDate,
		SupervisorNotes:   p.SupervisorNotes,
		QuizPassed:        p.QuizPassed,
		QuizScore:         p.QuizScore,
	}
}

// AdminFieldsRequest writes the supervisor-editable fields.
type AdminFieldsRequest struct {
	AgentID         string     `json:"agent_id"`
	AgentStanding   string     `json:"agent_standing"`
	LeadSource      string     `json:"lead_source"`
	StartDate       *time.Time `json:"start_date"`
	SupervisorNotes string     `json:"supervisor_notes"`
}

// EvidenceView exposes the read-only evidence images.
type EvidenceView struct {
	IDImageURL        string `json:"id_image_url"`
	SpeedTestURL      string `json:"speed_test_url"`
	SystemSettingsURL string `json:"system_settings_url"`
}
