package domain

import "testing"

func TestAnswerTriState(t *testing.T) {
	if AnswerUnanswered.Answered() {
		t.Fatal("unanswered reports answered")
	}
	if !AnswerNo.Answered() || !AnswerYes.Answered() {
		t.Fatal("explicit answers must report answered")
	}
	if AnswerNo.IsYes() || AnswerUnanswered.IsYes() {
		t.Fatal("only yes is affirmative")
	}
}

func TestAnswerNullableRoundTrip(t *testing.T) {
	for _, a := range []Answer{AnswerUnanswered, AnswerYes, AnswerNo} {
		if got := AnswerFromBoolPtr(a.BoolPtr()); got != a {
			t.Fatalf("round trip %q: got %q", a, got)
		}
	}
}
