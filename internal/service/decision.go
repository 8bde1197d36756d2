package service

import "github.com/remotereps/agent-onboarding/internal/domain"

// GateAnswers collects the seven answers that gate approval. Nothing else an
// applicant submits affects the decision.
type GateAnswers struct {
	HasHeadset       domain.Answer
	HasQuietPlace    domain.Answer
	MeetObligation   domain.Answer
	LoginDiscord     domain.Answer
	CheckEmails      domain.Answer
	SolveProblems    domain.Answer
	CompleteTraining domain.Answer
}

// DecideStatus is the single source of truth for the onboarding decision.
// Approved requires a strict yes on every gate; anything unset or answered
// no rejects the application.
func DecideStatus(g GateAnswers) domain.ApplicationStatus {
	gates := []domain.Answer{
		g.HasHeadset,
		g.HasQuietPlace,
		g.MeetObligation,
		g.LoginDiscord,
		g.CheckEmails,
		g.SolveProblems,
		g.CompleteTraining,
	}
	for _, gate := range gates {
		if !gate.IsYes() {
			return domain.ApplicationStatusRejected
		}
	}
	return domain.ApplicationStatusApproved
}

// GatesFromDraft extracts the gating answers from a wizard draft.
func GatesFromDraft(d *domain.WizardDraft) GateAnswers {
	return GateAnswers{
		HasHeadset:       d.HasHeadset,
		HasQuietPlace:    d.HasQuietPlace,
		MeetObligation:   d.MeetObligation,
		LoginDiscord:     d.LoginDiscord,
		CheckEmails:      d.CheckEmails,
		SolveProblems:    d.SolveProblems,
		CompleteTraining: d.CompleteTraining,
	}
}

// GatesFromProfile extracts the gating answers from a stored profile.
func GatesFromProfile(p *domain.Profile) GateAnswers {
	return GateAnswers{
		HasHeadset:       p.HasHeadset,
		HasQuietPlace:    p.HasQuietPlace,
		MeetObligation:   p.MeetObligation,
		LoginDiscord:     p.LoginDiscord,
		CheckEmails:      p.CheckEmails,
		SolveProblems:    p.SolveProblems,
		CompleteTraining: p.CompleteTraining,
	}
}
