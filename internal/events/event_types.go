package events

import (
	"time"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted EventType = "application_submitted"
	EventApplicationApproved  EventType = "application_approved"
	EventApplicationRejected  EventType = "application_rejected"
	EventVideoWatched         EventType = "training_video_watched"
	EventQuizCompleted        EventType = "quiz_completed"
	EventAdminFieldsUpdated   EventType = "profile_admin_updated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ProfileID string      `json:"profile_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ApplicationSubmittedPayload carries the decision outcome.
type ApplicationSubmittedPayload struct {
	Email  string                   `json:"email"`
	Status domain.ApplicationStatus `json:"status"`
}

// QuizCompletedPayload carries the quiz outcome.
type QuizCompletedPayload struct {
	Score  int  `json:"score"`
	Passed bool `json:"passed"`
}

// AdminFieldsUpdatedPayload identifies the supervisor who edited the row.
type AdminFieldsUpdatedPayload struct {
	SupervisorID string `json:"supervisor_id"`
}
