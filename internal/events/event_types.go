package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/sso-gateway/internal/domain"
)

// EventType enumerates auth audit event identifiers.
type EventType string

const (
	EventSessionIssued       EventType = "session_issued"
	EventCallbackRejected    EventType = "callback_rejected"
	EventAuthorizationDenied EventType = "authorization_denied"
)

// Fields carries the optional details attached to an auth event.
type Fields struct {
	Email     string
	SubjectID string
	Role      domain.Role
	Path      string
	Reason    string
}

// Event is an auth outcome emitted by the callback flow and the role gate.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Email     string      `json:"email,omitempty"`
	SubjectID string      `json:"subject_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Path      string      `json:"path,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent stamps an event with an ID and the current time.
func NewEvent(eventType EventType, fields Fields) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Email:     fields.Email,
		SubjectID: fields.SubjectID,
		Role:      fields.Role,
		Path:      fields.Path,
		Reason:    fields.Reason,
		Timestamp: time.Now(),
	}
}
