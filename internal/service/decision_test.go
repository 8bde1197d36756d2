package service

import (
	"testing"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

func gatesFromMask(mask int) GateAnswers {
	answers := [7]domain.Answer{}
	for i := range answers {
		if mask&(1<<i) != 0 {
			answers[i] = domain.AnswerYes
		} else {
			answers[i] = domain.AnswerNo
		}
	}
	return GateAnswers{
		HasHeadset:       answers[0],
		HasQuietPlace:    answers[1],
		MeetObligation:   answers[2],
		LoginDiscord:     answers[3],
		CheckEmails:      answers[4],
		SolveProblems:    answers[5],
		CompleteTraining: answers[6],
	}
}

func TestDecideStatusRequiresEveryYes(t *testing.T) {
	allYes := 1<<7 - 1
	for mask := 0; mask <= allYes; mask++ {
		got := DecideStatus(gatesFromMask(mask))
		want := domain.ApplicationStatusRejected
		if mask == allYes {
			want = domain.ApplicationStatusApproved
		}
		if got != want {
			t.Fatalf("mask %07b: got %s, want %s", mask, got, want)
		}
	}
}

func TestDecideStatusUnansweredRejects(t *testing.T) {
	g := gatesFromMask(1<<7 - 1)
	g.SolveProblems = domain.AnswerUnanswered
	if got := DecideStatus(g); got != domain.ApplicationStatusRejected {
		t.Fatalf("unanswered gate: got %s, want rejected", got)
	}
}

func TestGatesFromDraftAndProfileAgree(t *testing.T) {
	draft := &domain.WizardDraft{
		HasHeadset:       domain.AnswerYes,
		HasQuietPlace:    domain.AnswerYes,
		MeetObligation:   domain.AnswerYes,
		LoginDiscord:     domain.AnswerYes,
		CheckEmails:      domain.AnswerYes,
		SolveProblems:    domain.AnswerNo,
		CompleteTraining: domain.AnswerYes,
	}
	profile := &domain.Profile{}
	profile.HasHeadset = draft.HasHeadset
	profile.HasQuietPlace = draft.HasQuietPlace
	profile.MeetObligation = draft.MeetObligation
	profile.LoginDiscord = draft.LoginDiscord
	profile.CheckEmails = draft.CheckEmails
	profile.SolveProblems = draft.SolveProblems
	profile.CompleteTraining = draft.CompleteTraining

	if GatesFromDraft(draft) != GatesFromProfile(profile) {
		t.Fatal("draft and profile gates should extract identically")
	}
	if got := DecideStatus(GatesFromDraft(draft)); got != domain.ApplicationStatusRejected {
		t.Fatalf("got %s, want rejected", got)
	}
}
