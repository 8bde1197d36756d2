package domain

// TrainingStage is the entry state of the training gate, derived from the
// persisted profile flags.
type TrainingStage string

const (
	StageVideo  TrainingStage = "video"
	StageQuiz   TrainingStage = "quiz"
	StageResult TrainingStage = "result"
)

// TrainingStageFor derives the stage a user should land on: a recorded quiz
// attempt goes straight to the result, a watched video goes to the quiz,
// anything else starts at the video.
func TrainingStageFor(p *Profile) TrainingStage {
	if p.QuizPassed != nil {
		return StageResult
	}
	if p.VideoWatched {
		return StageQuiz
	}
	return StageVideo
}

// QuizQuestion is one multiple-choice question presented to the applicant.
// CorrectIndex never leaves the server.
type QuizQuestion struct {
	ID           string
	Prompt       string
	Options      []string
	CorrectIndex int
}

// QuizSession tracks a single pass through the quiz. Questions are answered
// one at a time with no back navigation.
type QuizSession struct {
	UserID  string `json:"user_id"`
	Index   int    `json:"index"`
	Correct int    `json:"correct"`
}

// QuizResult is the outcome of a completed quiz.
type QuizResult struct {
	Score  int
	Passed bool
}

// ScoreQuiz computes the integer percentage score and the pass flag. Passing
// requires every answer correct.
func ScoreQuiz(correct, total int) QuizResult {
	if total <= 0 {
		return QuizResult{}
	}
	score := int(float64(correct)/float64(total)*100 + 0.5)
	return QuizResult{Score: score, Passed: correct == total}
}
