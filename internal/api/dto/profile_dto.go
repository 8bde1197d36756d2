package dto

import (
	"time"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// ProfileSummary is the identity slice of a profile.
type ProfileSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// DashboardView is the agent dashboard snapshot derived from the profile row.
type DashboardView struct {
	Profile           ProfileSummary `json:"profile"`
	ApplicationStatus string         `json:"application_status"`
	Credentials       string         `json:"credentials"`
	VideoWatched      bool           `json:"video_watched"`
	QuizPassed        *bool          `json:"quiz_passed"`
	QuizScore         int            `json:"quiz_score"`
	InterviewUnlocked bool           `json:"interview_unlocked"`
	AgentStanding     string         `json:"agent_standing"`
	StartDate         *time.Time     `json:"start_date,omitempty"`
}

// NewDashboardView derives the dashboard from a profile row. Interview
// scheduling unlocks only once the training gate is fully cleared.
func NewDashboardView(p *domain.Profile) DashboardView {
	unlocked := p.VideoWatched && p.QuizPassed != nil && *p.QuizPassed
	return DashboardView{
		Profile: ProfileSummary{
			ID:        p.ID,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Email:     p.Email,
		},
		ApplicationStatus: string(p.ApplicationStatus),
		Credentials:       string(p.Credentials),
		VideoWatched:      p.VideoWatched,
		QuizPassed:        p.QuizPassed,
		QuizScore:         p.QuizScore,
		InterviewUnlocked: unlocked,
		AgentStanding:     string(p.AgentStanding),
		StartDate:         p.StartDate,
	}
}

// BankingRequest writes banking details. They are write-only: reads return
// only the masked view.
type BankingRequest struct {
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
}

// BankingView is the masked read view.
type BankingView struct {
	RoutingLast4 string `json:"routing_last4"`
	AccountLast4 string `json:"account_last4"`
	AccountType  string `json:"account_type"`
}

// NewBankingView converts the domain masked view.
func NewBankingView(b domain.MaskedBanking) BankingView {
	return BankingView{
		RoutingLast4: b.RoutingLast4,
		AccountLast4: b.AccountLast4,
		AccountType:  b.AccountType,
	}
}
