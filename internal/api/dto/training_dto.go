package dto

import "github.com/remotereps/agent-onboarding/internal/service"

// TrainingStateView is the gate snapshot.
type TrainingStateView struct {
	Stage         string  `json:"stage"`
	Watermark     float64 `json:"watermark"`
	VideoDuration int     `json:"video_duration"`
	QuizTotal     int     `json:"quiz_total"`
	QuizScore     int     `json:"quiz_score"`
	QuizPassed    *bool   `json:"quiz_passed"`
	RetryAllowed  bool    `json:"retry_allowed"`
}

// NewTrainingStateView converts the service state.
func NewTrainingStateView(s *service.TrainingState) TrainingStateView {
	return TrainingStateView{
		Stage:         string(s.Stage),
		Watermark:     s.Watermark,
		VideoDuration: s.VideoDuration,
		QuizTotal:     s.QuizTotal,
		QuizScore:     s.QuizScore,
		QuizPassed:    s.QuizPassed,
		RetryAllowed:  s.RetryAllowed,
	}
}

// ProgressRequest is a once-per-second playback ping.
type ProgressRequest struct {
	Position float64 `json:"position"`
}

// ProgressResponse returns the accepted position; warned marks a detected
// forward skip.
type ProgressResponse struct {
	Position float64 `json:"position"`
	Warned   bool    `json:"warned"`
}

// QuestionView is a quiz question with the answer key stripped.
type QuestionView struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// NewQuestionView converts the service view.
func NewQuestionView(q *service.QuizQuestionView) *QuestionView {
	if q == nil {
		return nil
	}
	return &QuestionView{
		Index:   q.Index,
		Total:   q.Total,
		ID:      q.ID,
		Prompt:  q.Prompt,
		Options: q.Options,
	}
}

// AnswerRequest answers the current question.
type AnswerRequest struct {
	QuestionIndex int `json:"question_index"`
	Choice        int `json:"choice"`
}

// AnswerResponse carries either the next question or the final result.
type AnswerResponse struct {
	Next   *QuestionView `json:"next,omitempty"`
	Score  *int          `json:"score,omitempty"`
	Passed *bool         `json:"passed,omitempty"`
}
