package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on quiz lifecycle transitions. Downstream consumers
// (the annotation pipeline, search indexing) subscribe to these; this service
// only publishes.
const (
	QuizCreated       = "quiz.created"
	QuizUpdated       = "quiz.updated"
	QuizDeleted       = "quiz.deleted"
	QuizStatusChanged = "quiz.status_changed"
)

const (
	eventSource  = "quizbank-admin"
	eventVersion = "1.0"
)

// Event is the envelope every published message carries.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// QuizEvent is the payload for quiz lifecycle events.
type QuizEvent struct {
	QuizID   string `json:"quiz_id"`
	Title    string `json:"title,omitempty"`
	TestType string `json:"test_type,omitempty"`
	Status   string `json:"status,omitempty"`
}

// NewEvent builds an envelope around data.
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
