package domain

// Answer is an explicitly tri-state reply: a question that has not been
// answered is distinct from one answered "no". Validation rules that require
// an explicit answer check Answered, not truthiness.
type Answer string

const (
	AnswerUnanswered Answer = ""
	AnswerYes        Answer = "yes"
	AnswerNo         Answer = "no"
)

// Answered reports whether the question was explicitly answered either way.
func (a Answer) Answered() bool {
	return a == AnswerYes || a == AnswerNo
}

// IsYes reports a strict affirmative.
func (a Answer) IsYes() bool {
	return a == AnswerYes
}

// AnswerFromBool converts a client-supplied boolean into an Answer.
func AnswerFromBool(b bool) Answer {
	if b {
		return AnswerYes
	}
	return AnswerNo
}

// AnswerFromBoolPtr maps a nullable column to the tri-state form.
func AnswerFromBoolPtr(b *bool) Answer {
	if b == nil {
		return AnswerUnanswered
	}
	return AnswerFromBool(*b)
}

// BoolPtr maps the tri-state form back onto a nullable column.
func (a Answer) BoolPtr() *bool {
	switch a {
	case AnswerYes:
		v := true
		return &v
	case AnswerNo:
		v := false
		return &v
	}
	return nil
}
